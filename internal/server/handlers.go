package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
)

// maxRequestBody bounds the size of a chat request body.
const maxRequestBody = 1 << 20

// errorResponse is the body of every proxy failure.
type errorResponse struct {
	Error  string  `json:"error"`
	Detail *string `json:"detail,omitempty"`
}

// chatPayload is the proxy request body. The history is forwarded as sent.
type chatPayload struct {
	Question string      `json:"question"`
	Messages []chat.Turn `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	raw, err := s.backend.ChatRaw(r.Context(), req)
	if err != nil {
		s.writeBackendError(w, r, err, backend.EndpointChat)
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	raw, err := s.backend.SourcesRaw(r.Context())
	if err != nil {
		s.writeBackendError(w, r, err, backend.EndpointSources)
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": s.version})
}

// decodeChatRequest validates the proxy body and writes the 400 response
// itself when it is unusable.
func decodeChatRequest(w http.ResponseWriter, r *http.Request) (chat.Request, bool) {
	var payload chatPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, backend.MsgInvalidPayload)
		return chat.Request{}, false
	}
	if strings.TrimSpace(payload.Question) == "" {
		writeError(w, http.StatusBadRequest, backend.MsgQuestionRequired)
		return chat.Request{}, false
	}
	return chat.NewRequest(payload.Question, payload.Messages), true
}

// statusFor maps a backend failure to the proxy status code.
func statusFor(kind backend.Kind) int {
	switch kind {
	case backend.KindInvalidRequest:
		return http.StatusBadRequest
	case backend.KindUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

func (s *Server) writeBackendError(w http.ResponseWriter, r *http.Request, err error, endpoint backend.Endpoint) {
	kind := backend.KindOf(err)
	s.logger.Warn("backend call failed",
		"endpoint", endpoint,
		"kind", kind,
		"err", err,
		"request_id", RequestID(r.Context()),
	)

	resp := errorResponse{Error: backend.Message(err, endpoint)}
	if kind == backend.KindUpstreamError {
		detail := backend.Detail(err)
		resp.Detail = &detail
	}
	writeJSON(w, statusFor(kind), resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an already encoded JSON body.
func writeRawJSON(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
