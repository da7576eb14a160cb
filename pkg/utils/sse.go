package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SetupSSEHeaders prepares w for a Server-Sent Events stream.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// SendSSEEvent writes one named event with a JSON payload and flushes it.
// The returned error means the client is gone and the stream should stop.
func SendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal sse event %q: %w", event, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write sse event %q: %w", event, err)
	}
	flusher.Flush()
	return nil
}
