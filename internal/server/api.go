package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
)

const maxUploadBytes = 256 << 20

type RecordingStore interface {
	FindAllRecordings() ([]storage.Recording, error)
	GetRecording(id int64) (storage.Recording, error)
	CreateRecording(rec *storage.Recording) error
}

// BatchRunner triggers a processing pass over the stored recordings.
type BatchRunner interface {
	ProcessAll(ctx context.Context) error
	Running() bool
}

func registerAPIRoutes(mux *http.ServeMux, store RecordingStore, hub *Hub, uploadDir string, runner BatchRunner) {
	mux.HandleFunc("GET /api/recordings", func(w http.ResponseWriter, r *http.Request) {
		recordings, err := store.FindAllRecordings()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list recordings: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, recordings)
	})

	mux.HandleFunc("GET /api/recordings/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordingID(w, r)
		if !ok {
			return
		}

		rec, err := store.GetRecording(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeJSONError(w, status, fmt.Sprintf("get recording: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	mux.HandleFunc("GET /api/recordings/{id}/audio", func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordingID(w, r)
		if !ok {
			return
		}

		rec, err := store.GetRecording(id)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "recording not found")
			return
		}

		cleanPath := filepath.Clean(rec.Filepath)
		if cleanPath == "" || cleanPath == "." || cleanPath == ".." || strings.Contains(cleanPath, "..") {
			writeJSONError(w, http.StatusForbidden, "invalid audio path")
			return
		}

		f, err := os.Open(cleanPath)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "audio file not found")
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("stat audio: %v", err))
			return
		}

		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Type", contentTypeForAudio(rec))
		http.ServeContent(w, r, rec.Filename, info.ModTime(), f)
	})

	mux.HandleFunc("POST /api/recordings", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("recording")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing recording file field")
			return
		}
		defer func() { _ = file.Close() }()

		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("create upload dir: %v", err))
			return
		}

		// Timestamp prefix keeps repeated uploads of the same file distinct.
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
		dstPath := filepath.Join(uploadDir, name)

		dst, err := os.Create(dstPath)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("store upload: %v", err))
			return
		}

		written, err := io.Copy(dst, file)
		closeErr := dst.Close()
		if err != nil || closeErr != nil {
			_ = os.Remove(dstPath)
			writeJSONError(w, http.StatusInternalServerError, "store upload failed")
			return
		}

		rec := storage.Recording{
			Filename: filepath.Base(header.Filename),
			Filepath: dstPath,
			Mimetype: header.Header.Get("Content-Type"),
			Size:     written,
		}
		if err := store.CreateRecording(&rec); err != nil {
			_ = os.Remove(dstPath)
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("create recording: %v", err))
			return
		}

		if hub != nil {
			hub.BroadcastRecordingUploaded(rec)
		}
		writeJSON(w, http.StatusCreated, rec)
	})

	mux.HandleFunc("POST /api/process", func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "processing is not configured")
			return
		}
		if runner.Running() {
			writeJSONError(w, http.StatusConflict, "a processing pass is already running")
			return
		}

		// The pass outlives the request; the request only kicks it off.
		go func() {
			if err := runner.ProcessAll(context.Background()); err != nil {
				log.Printf("processing pass: %v", err)
			}
		}()

		w.WriteHeader(http.StatusAccepted)
	})
}

func recordingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid recording id")
		return 0, false
	}
	return id, true
}

func contentTypeForAudio(rec storage.Recording) string {
	if rec.Mimetype != "" {
		return rec.Mimetype
	}

	switch filepath.Ext(rec.Filepath) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
