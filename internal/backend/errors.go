package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Endpoint names a backend route.
type Endpoint string

const (
	EndpointChat    Endpoint = "/v1/chat"
	EndpointSources Endpoint = "/v1/sources"
)

// MaxDetail is the number of characters of an upstream error body kept as
// diagnostic detail.
const MaxDetail = 400

// User-facing messages, one per failure kind and endpoint.
const (
	MsgInvalidPayload      = "Payload invalido."
	MsgQuestionRequired    = "La pregunta es obligatoria."
	MsgChatUpstream        = "El backend LATAM respondio con error."
	MsgSourcesUpstream     = "El backend LATAM respondio con error en /v1/sources."
	MsgChatUnavailable     = "No se pudo conectar con el backend local. Inicia FastAPI en http://127.0.0.1:8000."
	MsgSourcesUnavailable  = "No se pudo conectar con el backend local para fuentes. Inicia el backend en http://127.0.0.1:8000."
	MsgConnectionFallback  = "Fallo de conexion con el backend local."
	MsgChatGenericFallback = "Error al consultar el backend LATAM."
)

// ErrInvalidRequest is returned before any network call when the question is
// empty after trimming.
var ErrInvalidRequest = errors.New("question is required")

// UpstreamError means the backend answered with a non-success status.
type UpstreamError struct {
	Endpoint Endpoint
	Status   int
	// Detail is the start of the response body, at most MaxDetail characters.
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend %s returned status %d", e.Endpoint, e.Status)
}

// UnavailableError means the backend could not be reached, did not answer in
// time, or sent a body that is not JSON.
type UnavailableError struct {
	Endpoint Endpoint
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %v", e.Endpoint, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Kind is the failure category of a backend call
type Kind int

const (
	KindNone Kind = iota
	KindInvalidRequest
	KindUpstreamError
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUpstreamError:
		return "upstream_error"
	case KindUnavailable:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Anything that is neither an invalid request nor an
// upstream status error counts as unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, ErrInvalidRequest) {
		return KindInvalidRequest
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return KindUpstreamError
	}

	return KindUnavailable
}

// Message returns the user-facing text for err on endpoint.
func Message(err error, endpoint Endpoint) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindInvalidRequest:
		return MsgQuestionRequired
	case KindUpstreamError:
		if endpoint == EndpointSources {
			return MsgSourcesUpstream
		}
		return MsgChatUpstream
	default:
		if endpoint == EndpointSources {
			return MsgSourcesUnavailable
		}
		return MsgChatUnavailable
	}
}

// Detail returns the diagnostic snippet of an upstream error, if any.
func Detail(err error) string {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Detail
	}
	return ""
}

// IsTimeout reports whether err is a bounded wait running out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncateDetail(body []byte) string {
	runes := []rune(string(body))
	if len(runes) > MaxDetail {
		runes = runes[:MaxDetail]
	}
	return string(runes)
}
