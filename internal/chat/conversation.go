package chat

import "strings"

// Conversation is the ordered list of messages of one chat view. It starts
// with the greeting.
type Conversation struct {
	Messages []Message
}

// NewConversation returns a conversation holding the greeting.
func NewConversation() *Conversation {
	return &Conversation{Messages: []Message{NewMessage(RoleAssistant, Greeting)}}
}

// Append adds m and returns its index.
func (c *Conversation) Append(m Message) int {
	c.Messages = append(c.Messages, m)
	return len(c.Messages) - 1
}

// Index returns the position of the message with id, or -1.
func (c *Conversation) Index(id string) int {
	for i, m := range c.Messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// SetContent replaces the content of the message with id. It reports whether
// the message exists.
func (c *Conversation) SetContent(id, content string) bool {
	i := c.Index(id)
	if i < 0 {
		return false
	}
	c.Messages[i].Content = content
	return true
}

// LastAssistant returns the most recent assistant message.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// History maps every message, greeting included, to a backend turn.
func (c *Conversation) History() []Turn {
	turns := make([]Turn, 0, len(c.Messages))
	for _, m := range c.Messages {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// NewRequest builds the backend request for question, trimming it.
func NewRequest(question string, history []Turn) Request {
	if history == nil {
		history = []Turn{}
	}
	return Request{Question: strings.TrimSpace(question), Messages: history}
}
