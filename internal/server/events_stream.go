package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
)

const (
	streamBuffer      = 100
	heartbeatInterval = 30 * time.Second
	wsWriteTimeout    = 5 * time.Second
)

// EventsStreamHandler streams bus events to clients over SSE or WebSocket.
type EventsStreamHandler struct {
	eventBus  *events.Bus
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewEventsStreamHandler creates a new unified events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:  eventBus,
		heartbeat: heartbeatInterval,
		log:       log.With().Str("component", "events_stream").Logger(),
	}
}

// parseTypes reads the optional comma-separated ?types= filter
func parseTypes(r *http.Request) []events.EventType {
	filter := r.URL.Query().Get("types")
	if filter == "" {
		return events.AllTypes()
	}

	var types []events.EventType
	for _, t := range strings.Split(filter, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, events.EventType(t))
		}
	}
	return types
}

// subscribe registers a non-blocking forwarder for types. Events that do not fit
// in the buffer are dropped; the first drop is logged and the total is logged once
// by the returned function, which also removes every subscription.
func (h *EventsStreamHandler) subscribe(types []events.EventType) (<-chan *events.Event, func()) {
	eventChan := make(chan *events.Event, streamBuffer)
	var dropped atomic.Uint64

	forward := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			if dropped.Add(1) == 1 {
				h.log.Warn().
					Str("event_type", string(event.Type)).
					Msg("Event channel full, dropping events")
			}
		}
	}

	ids := make([]uint64, 0, len(types))
	for _, t := range types {
		ids = append(ids, h.eventBus.Subscribe(t, forward))
	}

	return eventChan, func() {
		for _, id := range ids {
			h.eventBus.Unsubscribe(id)
		}
		if n := dropped.Load(); n > 0 {
			h.log.Warn().Uint64("dropped", n).Msg("Event stream closed with dropped events")
		}
	}
}

func eventPayload(event *events.Event) map[string]interface{} {
	return map[string]interface{}{
		"type":      string(event.Type),
		"module":    event.Module,
		"timestamp": event.Timestamp.Format(time.RFC3339),
		"data":      event.Data,
	}
}

func heartbeatPayload() map[string]interface{} {
	return map[string]interface{}{
		"type":      "heartbeat",
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func connectedPayload() map[string]interface{} {
	return map[string]interface{}{
		"type":    "connected",
		"message": "Connected to unified event stream",
	}
}

// ServeSSE handles GET /api/events/stream requests (Server-Sent Events).
func (h *EventsStreamHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	types := parseTypes(r)
	eventChan, unsubscribe := h.subscribe(types)
	defer unsubscribe()

	h.log.Info().Int("types", len(types)).Msg("Client connected to SSE event stream")

	fmt.Fprintf(w, "data: %s\n\n", h.encodeEvent(connectedPayload()))
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from SSE event stream")
			return

		case event := <-eventChan:
			fmt.Fprintf(w, "data: %s\n\n", h.encodeEvent(eventPayload(event)))
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "data: %s\n\n", h.encodeEvent(heartbeatPayload()))
			flusher.Flush()
		}
	}
}

// ServeWS handles GET /api/events/ws requests (WebSocket, JSON text frames).
func (h *EventsStreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	types := parseTypes(r)
	eventChan, unsubscribe := h.subscribe(types)
	defer unsubscribe()

	// Clients only listen; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Int("types", len(types)).Msg("Client connected to WebSocket event stream")

	if err := h.writeWS(ctx, conn, connectedPayload()); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		var payload map[string]interface{}
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from WebSocket event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			payload = eventPayload(event)
		case <-heartbeat.C:
			payload = heartbeatPayload()
		}

		if err := h.writeWS(ctx, conn, payload); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				h.log.Debug().Err(err).Msg("WebSocket write failed")
			}
			return
		}
	}
}

func (h *EventsStreamHandler) writeWS(ctx context.Context, conn *websocket.Conn, payload map[string]interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, payload)
}

// encodeEvent encodes an event map to JSON string.
func (h *EventsStreamHandler) encodeEvent(event map[string]interface{}) string {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode event")
		return `{"type":"error","message":"failed to encode event"}`
	}
	return string(data)
}
