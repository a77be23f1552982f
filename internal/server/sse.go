package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/markdown"
	"github.com/buker/latamai/internal/stream"
)

// Event names of the reveal stream.
const (
	eventMeta     = "meta"
	eventDelta    = "delta"
	eventComplete = "complete"
)

type metaEvent struct {
	chat.Meta
	ID           string   `json:"id"`
	CountryScope []string `json:"country_scope"`
}

type deltaEvent struct {
	Text     string `json:"text"`
	HTML     string `json:"html"`
	Revealed int    `json:"revealed"`
	Total    int    `json:"total"`
	Follow   bool   `json:"follow"`
}

// eventWriter writes server-sent events.
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (ew *eventWriter) send(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	ew.flusher.Flush()
	return nil
}

// handleChatStream asks the backend like handleChat, then reveals the answer
// as a stream of delta events. Failures before the first byte use the same
// JSON errors as handleChat. A client that disconnects cancels the reveal.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	raw, err := s.backend.ChatRaw(ctx, req)
	if err != nil {
		s.writeBackendError(w, r, err, backend.EndpointChat)
		return
	}

	var resp chat.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.writeBackendError(w, r, &backend.UnavailableError{Endpoint: backend.EndpointChat, Err: err}, backend.EndpointChat)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ew := &eventWriter{w: w, flusher: flusher}
	meta := metaEvent{Meta: resp.Meta(), ID: RequestID(ctx), CountryScope: resp.CountryScope}
	if meta.CountryScope == nil {
		meta.CountryScope = []string{}
	}
	if err := ew.send(eventMeta, meta); err != nil {
		return
	}

	err = stream.Play(ctx, resp.Text(), s.clock, func(ev stream.Event) error {
		payload := deltaEvent{
			Text:     ev.Text,
			HTML:     markdown.HTML(markdown.Render(ev.Text)),
			Revealed: ev.Revealed,
			Total:    ev.Total,
			Follow:   ev.Follow,
		}
		if ev.Kind == stream.Complete {
			return ew.send(eventComplete, payload)
		}
		return ew.send(eventDelta, payload)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("reveal stream ended early", "err", err, "request_id", RequestID(ctx))
	}
}
