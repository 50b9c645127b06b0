package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"maia/internal/logging"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // Applied when the caller's context has no deadline
}

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client. It returns ErrMissingAPIKey when
// cfg.APIKey is empty.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	logging.API("Gemini client ready: model=%s", model)
	return &GeminiClient{client: client, model: model, timeout: cfg.Timeout}, nil
}

// GeminiDialer returns a Dialer that builds a GeminiClient from cfg.
func GeminiDialer(cfg GeminiConfig) Dialer {
	return func(ctx context.Context) (Client, error) {
		return NewGeminiClient(ctx, cfg)
	}
}

// Model returns the default model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate sends req through Models.GenerateContent.
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, d := range req.Tools {
			decls[i] = toGenaiDeclaration(d)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if req.Temperature != nil {
		t := *req.Temperature
		config.Temperature = &t
	}

	contents := make([]*genai.Content, len(req.Contents))
	for i, c := range req.Contents {
		contents[i] = toGenaiContent(c)
	}

	start := time.Now()
	logging.APIDebug("[Gemini] GenerateContent: model=%s contents=%d tools=%d", model, len(contents), len(req.Tools))

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		logging.APIError("[Gemini] GenerateContent failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	out, err := fromGenaiResponse(resp)
	if err != nil {
		return nil, err
	}
	logging.APIDebug("[Gemini] GenerateContent ok in %v: calls=%d finish=%s tokens=%d",
		time.Since(start), len(out.FunctionCalls), out.FinishReason, out.Usage.TotalTokens)
	return out, nil
}

func toGenaiContent(c Content) *genai.Content {
	out := &genai.Content{Role: string(c.Role), Parts: make([]*genai.Part, 0, len(c.Parts))}
	for _, p := range c.Parts {
		part := &genai.Part{ThoughtSignature: p.ThoughtSignature}
		switch {
		case p.FunctionCall != nil:
			part.FunctionCall = &genai.FunctionCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}
		case p.FunctionResponse != nil:
			part.FunctionResponse = &genai.FunctionResponse{
				ID:       p.FunctionResponse.ID,
				Name:     p.FunctionResponse.Name,
				Response: p.FunctionResponse.Response,
			}
		default:
			part.Text = p.Text
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}

func toGenaiDeclaration(d FunctionDeclaration) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  toGenaiSchema(d.Parameters),
	}
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
	}
	return out
}

func toGenaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeInteger:
		return genai.TypeInteger
	case TypeNumber:
		return genai.TypeNumber
	case TypeBoolean:
		return genai.TypeBoolean
	case TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}

func fromGenaiResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrEmptyResponse
	}
	cand := resp.Candidates[0]

	out := &Response{FinishReason: string(cand.FinishReason)}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CandidatesTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	if cand.Content == nil {
		return out, nil
	}

	content := &Content{Role: RoleModel}
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		switch {
		case p.FunctionCall != nil:
			call := FunctionCall{ID: p.FunctionCall.ID, Name: p.FunctionCall.Name, Args: p.FunctionCall.Args}
			if call.Args == nil {
				call.Args = map[string]any{}
			}
			out.FunctionCalls = append(out.FunctionCalls, call)
			content.Parts = append(content.Parts, Part{FunctionCall: &call, ThoughtSignature: p.ThoughtSignature})
		case p.Thought:
			// Thought summaries are not part of the visible reply.
		case p.Text != "" || len(p.ThoughtSignature) > 0:
			text.WriteString(p.Text)
			content.Parts = append(content.Parts, Part{Text: p.Text, ThoughtSignature: p.ThoughtSignature})
		}
	}
	out.Text = text.String()
	out.Content = content
	return out, nil
}
