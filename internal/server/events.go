package server

import "time"

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type RecordingUploadedEvent struct {
	Event
	RecordingID int64  `json:"recording_id"`
	Filename    string `json:"filename"`
}

type BatchStartedEvent struct {
	Event
	Total int `json:"total"`
}

type BatchFinishedEvent struct {
	Event
	Transcribed int `json:"transcribed"`
	Summarized  int `json:"summarized"`
	Failed      int `json:"failed"`
}

type TranscriptionSavedEvent struct {
	Event
	RecordingID int64  `json:"recording_id"`
	Filename    string `json:"filename"`
}

type SummarySavedEvent struct {
	Event
	RecordingID int64  `json:"recording_id"`
	Filename    string `json:"filename"`
}

type RecordingFailedEvent struct {
	Event
	RecordingID int64  `json:"recording_id"`
	Filename    string `json:"filename"`
	Stage       string `json:"stage"`
	Error       string `json:"error"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
