package server

import "net/http"

// Handler builds the full HTTP surface: the recordings API and the
// websocket progress feed.
func Handler(hub *Hub, store RecordingStore, uploadDir string, runner BatchRunner) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, store, hub, uploadDir, runner)

	return mux
}
