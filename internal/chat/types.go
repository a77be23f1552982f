// Package chat holds the message and wire types shared by the terminal chat,
// the HTTP proxy and the backend client.
package chat

import "github.com/google/uuid"

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Defaults applied when the backend omits answer metadata.
const (
	DefaultDataCutoff    = "no-disponible"
	DefaultRetrievalMode = "lexical"
	DefaultEvidenceMode  = "strict-context"
	DefaultLLMRuntime    = "rule-based"

	// MissingAnswer replaces an answer the backend did not send.
	MissingAnswer = "No se recibio respuesta del backend LATAM."
)

// Greeting is the first assistant message of every conversation.
const Greeting = "# Hola, soy tu agente LATAM\n\n" +
	"Puedo ayudarte con cultura, biodiversidad, HDI, defensa y comparativas por pais en Latinoamerica y el Caribe."

// QuickPrompts are canned questions offered next to the input.
var QuickPrompts = []string{
	"Cultura de Peru por regiones.",
	"Ranking HDI de Sudamerica y el Caribe.",
	"Compara biodiversidad de Brasil, Peru y Colombia.",
	"Fuerzas armadas en el Cono Sur.",
}

// Turn is one entry of the history sent to the backend
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body of a chat call
type Request struct {
	Question string `json:"question"`
	Messages []Turn `json:"messages"`
}

// Source is a knowledge-base document cited by an answer
type Source struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Topic      string   `json:"topic"`
	SourceName string   `json:"source_name,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
	License    string   `json:"license,omitempty"`
	AsOfDate   string   `json:"as_of_date,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Label is the text shown for a cited source: title, topic, publisher
// ("fuente" when unknown) and, when known, the source's own cutoff date.
func (s Source) Label() string {
	name := s.SourceName
	if name == "" {
		name = "fuente"
	}
	label := s.Title + " (" + s.Topic + ") | " + name
	if s.AsOfDate != "" {
		label += " | corte: " + s.AsOfDate
	}
	return label
}

// Response is the backend answer. Optional fields are pointers so that an
// omitted field can be told apart from an empty one.
type Response struct {
	Answer        *string  `json:"answer"`
	Sources       []Source `json:"sources,omitempty"`
	CountryScope  []string `json:"country_scope,omitempty"`
	DataCutoff    *string  `json:"data_cutoff,omitempty"`
	RetrievalMode *string  `json:"retrieval_mode,omitempty"`
	EvidenceMode  *string  `json:"evidence_mode,omitempty"`
	LLMRuntime    *string  `json:"llm_runtime,omitempty"`
}

// Text returns the answer, or MissingAnswer when the backend sent none.
func (r *Response) Text() string {
	if r == nil || r.Answer == nil {
		return MissingAnswer
	}
	return *r.Answer
}

// Meta returns the answer metadata with defaults filled in.
func (r *Response) Meta() Meta {
	if r == nil {
		r = &Response{}
	}
	sources := r.Sources
	if sources == nil {
		sources = []Source{}
	}
	return Meta{
		Sources:       sources,
		DataCutoff:    orDefault(r.DataCutoff, DefaultDataCutoff),
		RetrievalMode: orDefault(r.RetrievalMode, DefaultRetrievalMode),
		EvidenceMode:  orDefault(r.EvidenceMode, DefaultEvidenceMode),
		LLMRuntime:    orDefault(r.LLMRuntime, DefaultLLMRuntime),
	}
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

// Meta is the metadata displayed under an assistant answer
type Meta struct {
	Sources       []Source `json:"sources"`
	DataCutoff    string   `json:"data_cutoff"`
	RetrievalMode string   `json:"retrieval_mode"`
	EvidenceMode  string   `json:"evidence_mode"`
	LLMRuntime    string   `json:"llm_runtime"`
}

// Footer is the one-line summary of the metadata.
func (m Meta) Footer() string {
	return "Corte global: " + m.DataCutoff +
		" | retrieval: " + m.RetrievalMode +
		" | evidence: " + m.EvidenceMode +
		" | runtime: " + m.LLMRuntime
}

// DataSource is one entry of the backend sources listing
type DataSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// SourcesResponse is the body of the sources listing
type SourcesResponse struct {
	Sources []DataSource `json:"sources"`
}

// Message is one entry of a conversation as shown to the user
type Message struct {
	ID      string
	Role    Role
	Content string
	Meta    *Meta
}

// NewMessage creates a message with a fresh ID.
func NewMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}
