package session

import (
	"sync"

	"maia/internal/types"
)

// Transcript is the ordered, user-visible message log of a chat. It is safe
// for concurrent use; readers always get copies.
type Transcript struct {
	mu   sync.RWMutex
	msgs []types.Message
}

// NewTranscript returns a transcript holding a copy of msgs.
func NewTranscript(msgs []types.Message) *Transcript {
	return &Transcript{msgs: cloneMessages(msgs)}
}

// Append adds messages at the end.
func (t *Transcript) Append(msgs ...types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msgs...)
}

// Replace swaps the whole log.
func (t *Transcript) Replace(msgs []types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = cloneMessages(msgs)
}

// Clear empties the log.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = nil
}

// Messages returns a copy of the log in insertion order.
func (t *Transcript) Messages() []types.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneMessages(t.msgs)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

func cloneMessages(in []types.Message) []types.Message {
	if len(in) == 0 {
		return nil
	}
	return append([]types.Message(nil), in...)
}
