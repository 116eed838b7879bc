package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
)

// Hub fans pipeline progress events out to connected websocket clients.
// Slow clients drop messages rather than block the pipeline.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) BroadcastRecordingUploaded(rec storage.Recording) {
	h.broadcastEvent(RecordingUploadedEvent{
		Event:       newEvent("recording_uploaded", time.Now().UTC()),
		RecordingID: rec.ID,
		Filename:    rec.Filename,
	})
}

func (h *Hub) BroadcastBatchStarted(total int) {
	h.broadcastEvent(BatchStartedEvent{
		Event: newEvent("batch_started", time.Now().UTC()),
		Total: total,
	})
}

func (h *Hub) BroadcastBatchFinished(transcribed, summarized, failed int) {
	h.broadcastEvent(BatchFinishedEvent{
		Event:       newEvent("batch_finished", time.Now().UTC()),
		Transcribed: transcribed,
		Summarized:  summarized,
		Failed:      failed,
	})
}

func (h *Hub) BroadcastTranscriptionSaved(rec storage.Recording) {
	h.broadcastEvent(TranscriptionSavedEvent{
		Event:       newEvent("transcription_saved", time.Now().UTC()),
		RecordingID: rec.ID,
		Filename:    rec.Filename,
	})
}

func (h *Hub) BroadcastSummarySaved(rec storage.Recording) {
	h.broadcastEvent(SummarySavedEvent{
		Event:       newEvent("summary_saved", time.Now().UTC()),
		RecordingID: rec.ID,
		Filename:    rec.Filename,
	})
}

func (h *Hub) BroadcastRecordingFailed(rec storage.Recording, stage string, err error) {
	event := RecordingFailedEvent{
		Event:       newEvent("recording_failed", time.Now().UTC()),
		RecordingID: rec.ID,
		Filename:    rec.Filename,
		Stage:       stage,
	}
	if err != nil {
		event.Error = err.Error()
	}
	h.broadcastEvent(event)
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(payload)
}
