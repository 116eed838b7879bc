package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyhall/studyhall/internal/config"
	"github.com/studyhall/studyhall/internal/gdrive"
	"github.com/studyhall/studyhall/internal/llm"
	"github.com/studyhall/studyhall/internal/pipeline"
	"github.com/studyhall/studyhall/internal/server"
	"github.com/studyhall/studyhall/internal/storage"
	"github.com/studyhall/studyhall/internal/summary"
	"github.com/studyhall/studyhall/internal/transcribe"
)

func main() {
	log.Println("studyhall: starting")

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	for _, warning := range warnings {
		log.Printf("warning: %s", warning)
	}

	// The store is the one collaborator the process cannot run without.
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	transcriber := transcribe.NewDeepgram(cfg.DeepgramAPIKey, cfg.Language)

	var summarizer pipeline.Summarizer
	if s := buildSummarizer(cfg); s != nil {
		summarizer = s
	}

	hub := server.NewHub()

	pipe := pipeline.New(store, transcriber, summarizer,
		pipeline.WithEventBroadcaster(hub),
		pipeline.WithLogger(logger),
		pipeline.WithCallTimeout(cfg.ParsedRequestTimeout()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One pass over the full table once the store is up; uploads arriving
	// later wait for the next triggered pass.
	go func() {
		if err := pipe.ProcessAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("processing pass: %v", err)
		}
	}()

	if cfg.GDriveFolderID != "" {
		archiver, archiveErr := gdrive.NewArchiver(ctx, cfg.GoogleCredentialsFile, cfg.GDriveFolderID)
		if archiveErr != nil {
			log.Printf("warning: gdrive archive disabled: %v", archiveErr)
		} else {
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						date := time.Now().UTC().Format("2006-01-02")
						digest, err := store.ExportDigest(date)
						if err != nil {
							log.Printf("gdrive archive error: %v", err)
							continue
						}
						if err := archiver.Archive(date, digest); err != nil {
							log.Printf("gdrive archive error: %v", err)
						}
					}
				}
			}()
		}
	}

	handler := server.Handler(hub, store, cfg.UploadDir, pipe)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		log.Printf("studyhall: listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("studyhall: shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: http shutdown failed: %v", err)
	}
}

func buildSummarizer(cfg config.Config) *summary.Summarizer {
	provider, model, err := llm.ParseModel(cfg.SummaryModel)
	if err != nil {
		log.Printf("warning: summaries disabled: %v", err)
		return nil
	}

	apiKey := cfg.SummaryAPIKey(provider)
	if apiKey == "" {
		return nil
	}

	client, err := llm.NewClient(provider, apiKey, model)
	if err != nil {
		log.Printf("warning: summaries disabled: %v", err)
		return nil
	}

	return summary.New(client)
}
