package pipeline

import (
	"testing"

	"github.com/studyhall/studyhall/internal/storage"
)

func TestStateOf(t *testing.T) {
	cases := []struct {
		name string
		rec  storage.Recording
		want State
	}{
		{"fresh upload", storage.Recording{}, StatePending},
		{"whitespace transcription", storage.Recording{Transcription: "   "}, StatePending},
		{"transcribed only", storage.Recording{Transcription: "hello"}, StateTranscribed},
		{"fully processed", storage.Recording{Transcription: "hello", Summary: "Hi."}, StateSummarized},
		{"summary without transcript", storage.Recording{Summary: "orphan"}, StatePending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StateOf(tc.rec); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StatePending.String() != "pending" {
		t.Fatalf("unexpected pending string: %s", StatePending)
	}
	if StateTranscribed.String() != "transcribed" {
		t.Fatalf("unexpected transcribed string: %s", StateTranscribed)
	}
	if StateSummarized.String() != "summarized" {
		t.Fatalf("unexpected summarized string: %s", StateSummarized)
	}
	if State(42).String() != "unknown" {
		t.Fatalf("unexpected out-of-range string: %s", State(42))
	}
}
