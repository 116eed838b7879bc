package pipeline

import (
	"strings"

	"github.com/studyhall/studyhall/internal/storage"
)

// State is where a recording sits in its lifecycle. A recording only moves
// forward: Pending → Transcribed → Summarized. A summary without a
// transcript is unrepresentable here, which is what enforces the gating
// invariant.
type State int

const (
	StatePending State = iota
	StateTranscribed
	StateSummarized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateTranscribed:
		return "transcribed"
	case StateSummarized:
		return "summarized"
	default:
		return "unknown"
	}
}

// StateOf derives the lifecycle state from the two nullable fields. A
// summary on a record with no transcription is ignored rather than trusted;
// such a record is treated as pending.
func StateOf(rec storage.Recording) State {
	transcribed := strings.TrimSpace(rec.Transcription) != ""
	summarized := strings.TrimSpace(rec.Summary) != ""

	switch {
	case transcribed && summarized:
		return StateSummarized
	case transcribed:
		return StateTranscribed
	default:
		return StatePending
	}
}
