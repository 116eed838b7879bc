package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventSerialization(t *testing.T) {
	events := []any{
		RecordingUploadedEvent{Event: newEvent("recording_uploaded", time.Unix(1, 0)), RecordingID: 1, Filename: "lesson.webm"},
		BatchStartedEvent{Event: newEvent("batch_started", time.Unix(1, 0)), Total: 3},
		BatchFinishedEvent{Event: newEvent("batch_finished", time.Unix(1, 0)), Transcribed: 2, Summarized: 2, Failed: 1},
		TranscriptionSavedEvent{Event: newEvent("transcription_saved", time.Unix(1, 0)), RecordingID: 1, Filename: "lesson.webm"},
		SummarySavedEvent{Event: newEvent("summary_saved", time.Unix(1, 0)), RecordingID: 1, Filename: "lesson.webm"},
		RecordingFailedEvent{Event: newEvent("recording_failed", time.Unix(1, 0)), RecordingID: 1, Filename: "lesson.webm", Stage: "transcription", Error: "boom"},
		ConnectionEvent{Event: newEvent("connection", time.Unix(1, 0)), Connected: true},
	}

	for _, event := range events {
		b, err := json.Marshal(event)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var payload map[string]any
		if err := json.Unmarshal(b, &payload); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if payload["type"] == nil {
			t.Fatalf("missing type in payload: %s", string(b))
		}
		if payload["version"] == nil {
			t.Fatalf("missing version in payload: %s", string(b))
		}
		if payload["timestamp"] == nil {
			t.Fatalf("missing timestamp in payload: %s", string(b))
		}
	}
}

func TestHubBroadcastNonBlocking(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Fill the subscriber buffer without draining it; further
	// broadcasts must drop instead of blocking.
	for i := 0; i < 100; i++ {
		hub.Broadcast([]byte(`{"type":"batch_started"}`))
	}

	select {
	case msg := <-ch:
		if len(msg) == 0 {
			t.Fatal("expected non-empty message")
		}
	default:
		t.Fatal("expected buffered message")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after unsubscribe")
	}

	// Broadcasting after unsubscribe must not panic on the closed channel.
	hub.Broadcast([]byte(`{"type":"batch_finished"}`))
}
