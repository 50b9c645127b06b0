package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/llm"
)

type echoRequest struct {
	Message string `json:"message" validate:"required"`
	Times   int    `json:"times" validate:"omitempty,min=1,max=3"`
	Mode    string `json:"mode" validate:"omitempty,oneof=loud quiet"`
}

func (echoRequest) ToolName() string { return "echo" }

func echoTool() *Tool {
	return &Tool{
		Name:        "echo",
		Description: "Repite el mensaje",
		Category:    CategoryRouting,
		Schema: ToolSchema{
			Required: []string{"message"},
			Properties: map[string]Property{
				"message": {Type: "string", Description: "texto"},
				"times":   {Type: "integer", Description: "veces"},
				"mode":    {Type: "string", Enum: []string{"loud", "quiet"}},
			},
		},
		Decode: Decoder[echoRequest](),
		Execute: Typed(func(_ context.Context, req echoRequest) (string, error) {
			return "Echo: " + req.Message, nil
		}),
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	got := reg.Get("echo")
	require.NotNil(t, got)
	assert.Equal(t, "echo", got.Name)
	assert.Nil(t, reg.Get("missing"))
	assert.Equal(t, []string{"echo"}, reg.Names())
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	err := reg.Register(echoTool())
	assert.True(t, errors.Is(err, ErrToolAlreadyRegistered))
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	exec := func(context.Context, Request) (string, error) { return "", nil }
	dec := Decoder[echoRequest]()

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{"empty name", &Tool{Decode: dec, Execute: exec}, ErrToolNameEmpty},
		{"nil decode", &Tool{Name: "x", Execute: exec}, ErrToolDecodeNil},
		{"nil execute", &Tool{Name: "x", Decode: dec}, ErrToolExecuteNil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(reg.Register(tt.tool), tt.wantErr))
		})
	}
}

func TestExecute(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))
	ctx := context.Background()

	result, err := reg.Execute(ctx, "echo", map[string]any{"message": "hola"})
	require.NoError(t, err)
	assert.Equal(t, "Echo: hola", result.Result)
	assert.True(t, result.IsSuccess())

	_, err = reg.Execute(ctx, "echo", map[string]any{})
	assert.True(t, errors.Is(err, ErrMissingRequiredArg))

	_, err = reg.Execute(ctx, "echo", map[string]any{"message": nil})
	assert.True(t, errors.Is(err, ErrMissingRequiredArg))

	_, err = reg.Execute(ctx, "nonexistent", map[string]any{})
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestExecute_InvalidArgs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{"non-integral number", map[string]any{"message": "x", "times": 2.5}, "times"},
		{"out of range", map[string]any{"message": "x", "times": float64(9)}, "times: must not exceed 3"},
		{"wrong type", map[string]any{"message": 42.0}, "message"},
		{"enum", map[string]any{"message": "x", "mode": "shout"}, "mode: must be one of"},
		{"empty string", map[string]any{"message": ""}, "message: field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reg.Execute(ctx, "echo", tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgs), err.Error())
			assert.Contains(t, err.Error(), tt.wantMsg)
			require.NotNil(t, res)
			assert.False(t, res.IsSuccess())
		})
	}
}

func TestExecute_IntegralFloatAccepted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	_, err := reg.Execute(context.Background(), "echo", map[string]any{"message": "x", "times": float64(2)})
	assert.NoError(t, err)
}

func TestTyped_WrongRequest(t *testing.T) {
	type other struct{ echoRequest }
	exec := Typed(func(context.Context, other) (string, error) { return "", nil })
	_, err := exec(context.Background(), echoRequest{})
	assert.True(t, errors.Is(err, ErrUnexpectedRequest))
}

func TestDeclarations(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))
	require.NoError(t, reg.Register(&Tool{
		Name:    "alpha",
		Decode:  Decoder[echoRequest](),
		Execute: func(context.Context, Request) (string, error) { return "", nil },
	}))

	decls := reg.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "alpha", decls[0].Name)

	echo := decls[1]
	assert.Equal(t, "Repite el mensaje", echo.Description)
	require.NotNil(t, echo.Parameters)
	assert.Equal(t, llm.TypeObject, echo.Parameters.Type)
	assert.Equal(t, []string{"message"}, echo.Parameters.Required)
	assert.Equal(t, llm.TypeInteger, echo.Parameters.Properties["times"].Type)
	assert.Equal(t, []string{"loud", "quiet"}, echo.Parameters.Properties["mode"].Enum)
}
