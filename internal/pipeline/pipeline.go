// Package pipeline advances stored recordings toward {transcribed,
// summarized}. One batch pass visits every recording sequentially; a
// failure on one recording is logged and never aborts the rest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
)

// ErrAlreadyRunning is returned when a pass is requested while another is
// still in flight. At most one pass runs at a time, which keeps each
// recording processed at most once per run.
var ErrAlreadyRunning = errors.New("a processing pass is already running")

type Pipeline struct {
	store       Store
	transcriber Transcriber
	summarizer  Summarizer
	hub         EventBroadcaster
	logger      *slog.Logger
	callTimeout time.Duration

	openAudio func(path string) (io.ReadCloser, error)

	running atomic.Bool
}

type Option func(*Pipeline)

func WithEventBroadcaster(hub EventBroadcaster) Option {
	return func(p *Pipeline) { p.hub = hub }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithCallTimeout bounds every external recognizer/summarizer call. Zero
// disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.callTimeout = d }
}

func New(store Store, transcriber Transcriber, summarizer Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       store,
		transcriber: transcriber,
		summarizer:  summarizer,
		logger:      slog.Default(),
		callTimeout: 2 * time.Minute,
		openAudio: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Running reports whether a pass is currently in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

type recordOutcome struct {
	transcribed bool
	summarized  bool
	failed      bool
}

// ProcessAll runs one pass over every recording in the store. Recordings
// are visited in store order, one at a time. The returned error covers only
// driver-level conditions (store fetch failure, a pass already running,
// context cancellation); per-recording failures are logged and isolated.
func (p *Pipeline) ProcessAll(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	recordings, err := p.store.FindAllRecordings()
	if err != nil {
		return fmt.Errorf("fetch recordings: %w", err)
	}

	if len(recordings) == 0 {
		p.logger.Info("no recordings found")
		return nil
	}

	if p.hub != nil {
		p.hub.BroadcastBatchStarted(len(recordings))
	}

	var transcribed, summarized, failed int
	for _, rec := range recordings {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("processing pass interrupted", slog.String("error", err.Error()))
			return err
		}

		outcome := p.processRecord(ctx, rec)
		if outcome.transcribed {
			transcribed++
		}
		if outcome.summarized {
			summarized++
		}
		if outcome.failed {
			failed++
		}
	}

	p.logger.Info("processing pass complete",
		slog.Int("recordings", len(recordings)),
		slog.Int("transcribed", transcribed),
		slog.Int("summarized", summarized),
		slog.Int("failed", failed),
	)

	if p.hub != nil {
		p.hub.BroadcastBatchFinished(transcribed, summarized, failed)
	}
	return nil
}

// processRecord advances a single recording as far as it can get this pass.
// Transcription always completes (or fails) before summarization is
// attempted for the same recording.
func (p *Pipeline) processRecord(ctx context.Context, rec storage.Recording) recordOutcome {
	log := p.logger.With(slog.String("recording", rec.Filename))
	var outcome recordOutcome

	if rec.ID == 0 {
		log.Warn("recording has no id, skipping")
		outcome.failed = true
		return outcome
	}

	if StateOf(rec) == StatePending {
		updated, err := p.transcribeRecord(ctx, rec, log)
		if err != nil {
			log.Error("transcription failed", slog.String("error", err.Error()))
			if p.hub != nil {
				p.hub.BroadcastRecordingFailed(rec, "transcription", err)
			}
			outcome.failed = true
			return outcome
		}
		outcome.transcribed = true
		outcome.summarized = StateOf(updated) == StateSummarized
		rec = updated
	}

	if StateOf(rec) == StateTranscribed && p.summarizer != nil {
		if err := p.summarizeRecord(ctx, &rec, log); err != nil {
			log.Error("summarization failed", slog.String("error", err.Error()))
			if p.hub != nil {
				p.hub.BroadcastRecordingFailed(rec, "summarization", err)
			}
			outcome.failed = true
			return outcome
		}
		outcome.summarized = StateOf(rec) == StateSummarized
	}

	return outcome
}

// transcribeRecord loads the audio payload, transcribes it, and persists
// the transcript. On success it immediately tries to summarize the fresh
// transcript as well, so the recording need not wait for a second pass; if
// that inline attempt fails, only the transcription persists.
func (p *Pipeline) transcribeRecord(ctx context.Context, rec storage.Recording, log *slog.Logger) (storage.Recording, error) {
	audio, err := p.openAudio(rec.Filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, fmt.Errorf("audio file not found: %s", rec.Filepath)
		}
		return rec, fmt.Errorf("open audio %s: %w", rec.Filepath, err)
	}
	defer func() { _ = audio.Close() }()

	log.Info("transcribing recording")

	tctx, cancel := p.callContext(ctx)
	transcript, err := p.transcriber.Transcribe(tctx, audio)
	cancel()
	if err != nil {
		return rec, err
	}

	rec.Transcription = transcript
	if err := p.store.SaveRecording(rec); err != nil {
		return rec, fmt.Errorf("save transcription: %w", err)
	}

	log.Info("transcription saved")
	if p.hub != nil {
		p.hub.BroadcastTranscriptionSaved(rec)
	}

	if p.summarizer == nil {
		return rec, nil
	}

	sctx, cancel := p.callContext(ctx)
	summaryText, err := p.summarizer.Summarize(sctx, transcript)
	cancel()
	if err != nil {
		log.Warn("inline summarization failed", slog.String("error", err.Error()))
		return rec, nil
	}
	if strings.TrimSpace(summaryText) == "" {
		log.Info("no summary generated")
		return rec, nil
	}

	rec.Summary = summaryText
	if err := p.store.SaveRecording(rec); err != nil {
		rec.Summary = ""
		log.Warn("save summary failed", slog.String("error", err.Error()))
		return rec, nil
	}

	log.Info("summary saved")
	if p.hub != nil {
		p.hub.BroadcastSummarySaved(rec)
	}
	return rec, nil
}

// summarizeRecord generates and persists a summary for an already
// transcribed recording. A summarizer that produces nothing is not an
// error; the recording keeps an empty summary and is retried next pass.
func (p *Pipeline) summarizeRecord(ctx context.Context, rec *storage.Recording, log *slog.Logger) error {
	log.Info("summarizing transcription")

	sctx, cancel := p.callContext(ctx)
	summaryText, err := p.summarizer.Summarize(sctx, rec.Transcription)
	cancel()
	if err != nil {
		return err
	}
	if strings.TrimSpace(summaryText) == "" {
		log.Info("no summary generated")
		return nil
	}

	rec.Summary = summaryText
	if err := p.store.SaveRecording(*rec); err != nil {
		rec.Summary = ""
		return fmt.Errorf("save summary: %w", err)
	}

	log.Info("summary saved")
	if p.hub != nil {
		p.hub.BroadcastSummarySaved(*rec)
	}
	return nil
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.callTimeout)
}
