package pipeline

import (
	"context"
	"io"

	"github.com/studyhall/studyhall/internal/storage"
)

// Store is the persistence collaborator. SaveRecording overwrites the
// persisted record with the in-memory fields, last write wins.
type Store interface {
	FindAllRecordings() ([]storage.Recording, error)
	SaveRecording(rec storage.Recording) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// EventBroadcaster receives progress notifications. All methods are
// fire-and-forget from the pipeline's perspective.
type EventBroadcaster interface {
	BroadcastBatchStarted(total int)
	BroadcastBatchFinished(transcribed, summarized, failed int)
	BroadcastTranscriptionSaved(rec storage.Recording)
	BroadcastSummarySaved(rec storage.Recording)
	BroadcastRecordingFailed(rec storage.Recording, stage string, err error)
}
