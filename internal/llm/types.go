// Package llm is the provider-neutral language-model surface MAIA talks to.
//
// Client sends one stateless request. Chat layers a history on top of a
// Client so the orchestration loop can send user text and tool results turn by
// turn, and roll the history back when a turn aborts.
package llm

// Role is the author of a Content.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse is the result of a FunctionCall sent back to the model.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Part is one element of a Content. Exactly one field is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`

	// ThoughtSignature is opaque model state attached to a part. It must be
	// sent back unchanged when the part is replayed as history.
	ThoughtSignature []byte `json:"thoughtSignature,omitempty"`
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// Content is one turn of a conversation.
type Content struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextContent returns a single-part text content.
func NewTextContent(role Role, text string) Content {
	return Content{Role: role, Parts: []Part{TextPart(text)}}
}

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
)

// Schema describes function parameters.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// FunctionDeclaration advertises a tool to the model.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Request is a single generation request.
type Request struct {
	Model             string
	SystemInstruction string
	Tools             []FunctionDeclaration
	Contents          []Content
	Temperature       *float32
}

// Usage reports token accounting for a response.
type Usage struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}

// Response is the model's reply to a Request.
type Response struct {
	// Text is the concatenated text of the reply, empty when the model only
	// called functions.
	Text string

	// FunctionCalls lists the calls in the order the model emitted them.
	FunctionCalls []FunctionCall

	// Content is the raw reply as it must be replayed in history.
	Content *Content

	Usage        Usage
	FinishReason string
}

// HasFunctionCalls reports whether the model asked for tool execution.
func (r *Response) HasFunctionCalls() bool {
	return r != nil && len(r.FunctionCalls) > 0
}
