package llm

import (
	"context"
	"fmt"
	"sync"

	"maia/internal/logging"
)

// ChatConfig fixes the per-session generation settings.
type ChatConfig struct {
	Model             string
	SystemInstruction string
	Tools             []FunctionDeclaration
	Temperature       *float32
}

// Chat keeps the remote conversation history for one session. A Send that
// fails leaves the history untouched.
type Chat struct {
	mu      sync.Mutex
	client  Client
	cfg     ChatConfig
	history []Content
}

// NewChat starts a chat seeded with history.
func NewChat(client Client, cfg ChatConfig, history []Content) *Chat {
	return &Chat{
		client:  client,
		cfg:     cfg,
		history: cloneContents(history),
	}
}

// SetSystemInstruction replaces the system instruction used from the next Send.
func (c *Chat) SetSystemInstruction(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.SystemInstruction = s
}

// SystemInstruction returns the current system instruction.
func (c *Chat) SystemInstruction() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.SystemInstruction
}

// SendText sends a user text turn.
func (c *Chat) SendText(ctx context.Context, text string) (*Response, error) {
	return c.Send(ctx, TextPart(text))
}

// SendFunctionResponses sends all results of one round as a single turn.
func (c *Chat) SendFunctionResponses(ctx context.Context, results []FunctionResponse) (*Response, error) {
	parts := make([]Part, len(results))
	for i := range results {
		r := results[i]
		parts[i] = Part{FunctionResponse: &r}
	}
	return c.Send(ctx, parts...)
}

// Send appends a user turn made of parts, generates, and records the reply.
func (c *Chat) Send(ctx context.Context, parts ...Part) (*Response, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("send: no parts")
	}

	c.mu.Lock()
	input := Content{Role: RoleUser, Parts: append([]Part(nil), parts...)}
	req := &Request{
		Model:             c.cfg.Model,
		SystemInstruction: c.cfg.SystemInstruction,
		Tools:             c.cfg.Tools,
		Contents:          append(cloneContents(c.history), input),
		Temperature:       c.cfg.Temperature,
	}
	c.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryAPI, "Chat.Send")
	resp, err := c.client.Generate(ctx, req)
	timer.Stop()
	if err != nil {
		logging.APIWarn("Generate failed (history len=%d): %v", len(req.Contents)-1, err)
		return nil, err
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}

	c.mu.Lock()
	c.history = append(c.history, input)
	if resp.Content != nil && len(resp.Content.Parts) > 0 {
		reply := cloneContent(*resp.Content)
		reply.Role = RoleModel
		c.history = append(c.history, reply)
	}
	n := len(c.history)
	c.mu.Unlock()

	logging.APIDebug("Chat round ok: text=%d chars calls=%d history=%d tokens=%d",
		len(resp.Text), len(resp.FunctionCalls), n, resp.Usage.TotalTokens)
	return resp, nil
}

// History returns a copy of the conversation so far.
func (c *Chat) History() []Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneContents(c.history)
}

// Len returns the number of history entries.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// Truncate drops history entries beyond n.
func (c *Chat) Truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < len(c.history) {
		logging.APIDebug("Truncating chat history %d -> %d", len(c.history), n)
		c.history = c.history[:n]
	}
}

func cloneContents(in []Content) []Content {
	out := make([]Content, len(in))
	for i, c := range in {
		out[i] = cloneContent(c)
	}
	return out
}

func cloneContent(c Content) Content {
	return Content{Role: c.Role, Parts: append([]Part(nil), c.Parts...)}
}
