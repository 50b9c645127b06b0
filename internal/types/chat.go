package types

import (
	"strings"
	"time"
)

// AgentMode selects the persona and tool emphasis of a conversation.
type AgentMode string

const (
	ModeRegister   AgentMode = "register"
	ModeModeling   AgentMode = "modeling"
	ModeMitigation AgentMode = "mitigation"
	ModeGeneral    AgentMode = "general"
)

// AgentModes lists the modes in the order the chat header shows them.
var AgentModes = []AgentMode{ModeRegister, ModeModeling, ModeMitigation, ModeGeneral}

// Valid reports whether m is a known mode.
func (m AgentMode) Valid() bool {
	for _, known := range AgentModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseAgentMode parses a mode name case-insensitively.
func ParseAgentMode(s string) (AgentMode, bool) {
	m := AgentMode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Label returns the Spanish display label for the mode.
func (m AgentMode) Label() string {
	switch m {
	case ModeRegister:
		return "Registro"
	case ModeModeling:
		return "Modelado"
	case ModeMitigation:
		return "Mitigación"
	default:
		return "General"
	}
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// MessageKind distinguishes real conversation turns from locally synthesized
// notices. Only KindChat messages are ever replayed to the model.
type MessageKind string

const (
	KindChat     MessageKind = "chat"
	KindGreeting MessageKind = "greeting"
	KindSystem   MessageKind = "system"
	KindError    MessageKind = "error"
)

// Message is one entry of a chat transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"kind,omitempty"`
}

// Conversational reports whether the message is a real user/model turn.
// Messages archived before Kind existed count as conversational.
func (m Message) Conversational() bool {
	return m.Kind == "" || m.Kind == KindChat
}

// ContextFile is a document attached to a session as retrieval context.
type ContextFile struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SameContext reports whether a and b refer to the same document. Documents are
// identified by title, so editing content under the same title is not a change.
func SameContext(a, b *ContextFile) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Title == b.Title
}

// ChatSession is an archived conversation.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	AgentMode AgentMode `json:"agentMode"`
	Summary   string    `json:"summary"`
	Messages  []Message `json:"messages"`
}
