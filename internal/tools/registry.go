package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"maia/internal/llm"
	"maia/internal/logging"
)

// Registry holds all available tools and provides lookup functionality.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	r.tools[tool.Name] = tool

	logging.ToolsDebug("Registered tool: %s (category=%s)", tool.Name, tool.Category)
	return nil
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Declarations returns the model-facing declarations of all tools, sorted by name.
func (r *Registry) Declarations() []llm.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]llm.FunctionDeclaration, 0, len(r.tools))
	for _, tool := range r.tools {
		decls = append(decls, declarationFor(tool))
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

func declarationFor(tool *Tool) llm.FunctionDeclaration {
	params := &llm.Schema{
		Type:        llm.TypeObject,
		Description: tool.Description,
		Properties:  make(map[string]*llm.Schema, len(tool.Schema.Properties)),
		Required:    append([]string(nil), tool.Schema.Required...),
	}
	for name, p := range tool.Schema.Properties {
		params.Properties[name] = &llm.Schema{
			Type:        llm.SchemaType(p.Type),
			Description: p.Description,
			Enum:        append([]string(nil), p.Enum...),
		}
	}
	return llm.FunctionDeclaration{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  params,
	}
}

// Execute runs a tool by name with the given arguments.
// Returns ErrToolNotFound if the tool doesn't exist.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	tool := r.Get(name)
	if tool == nil {
		logging.ToolsWarn("Model called unknown tool: %s", name)
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	return r.ExecuteTool(ctx, tool, args)
}

// ExecuteTool runs a specific tool with the given arguments.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, args map[string]any) (*ToolResult, error) {
	start := time.Now()
	fail := func(err error) (*ToolResult, error) {
		logging.ToolsWarn("Tool %s rejected: %v", tool.Name, err)
		return &ToolResult{ToolName: tool.Name, Error: err}, err
	}

	// Validate required arguments
	if err := r.validateArgs(tool, args); err != nil {
		return fail(err)
	}

	req, err := tool.Decode(args)
	if err != nil {
		return fail(err)
	}

	logging.ToolsDebug("Executing tool: %s", tool.Name)
	result, err := tool.Execute(ctx, req)

	duration := time.Since(start)
	logging.ToolsDebug("Tool %s completed in %v (success=%v)", tool.Name, duration, err == nil)

	return &ToolResult{
		ToolName: tool.Name,
		Result:   result,
		Error:    err,
	}, err
}

// validateArgs checks that all required arguments are present.
func (r *Registry) validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if v, ok := args[required]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}
