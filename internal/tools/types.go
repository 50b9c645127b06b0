// Package tools provides the declarative tool registry the model calls into.
//
// A tool is declared once (name, description, argument schema) and executed in
// three steps:
//
//	args map → Decode (typed request + validation) → Execute → acknowledgement
//
// Declarations are exported to the model through Registry.Declarations.
package tools

import (
	"context"
)

// ToolCategory groups tools by the agent mode that mainly uses them.
type ToolCategory string

const (
	// CategoryRegister covers asset and adversary inventory.
	CategoryRegister ToolCategory = "/register"

	// CategoryModeling covers threat identification.
	CategoryModeling ToolCategory = "/modeling"

	// CategoryMitigation covers mitigation planning.
	CategoryMitigation ToolCategory = "/mitigation"

	// CategoryRouting covers hand-offs between agent modes.
	CategoryRouting ToolCategory = "/routing"
)

// Property describes a single parameter property.
type Property struct {
	Type        string   `json:"type"` // string, integer, number, boolean
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolSchema defines the argument schema advertised to the model.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// Request is a decoded, validated tool request. Each tool has its own
// concrete request type.
type Request interface {
	ToolName() string
}

// DecodeFunc turns raw model arguments into a typed Request.
type DecodeFunc func(args map[string]any) (Request, error)

// ExecuteFunc runs a decoded request and returns the acknowledgement sent back
// to the model.
type ExecuteFunc func(ctx context.Context, req Request) (string, error)

// Tool is a function the model may call.
type Tool struct {
	// Name is the unique identifier the model calls the tool by.
	Name string

	// Description is shown to the model.
	Description string

	// Category classifies the tool.
	Category ToolCategory

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Decode builds the typed request.
	Decode DecodeFunc

	// Execute runs the tool.
	Execute ExecuteFunc
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Decode == nil {
		return ErrToolDecodeNil
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the acknowledgement from the tool.
	Result string

	// Error is set if the tool failed.
	Error error
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
