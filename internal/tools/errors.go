package tools

import "errors"

// Tool registry errors.
var (
	// ErrToolNotFound is returned when a tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty is returned when a tool has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecuteNil is returned when a tool has no execute function.
	ErrToolExecuteNil = errors.New("tool execute function cannot be nil")

	// ErrToolDecodeNil is returned when a tool has no decode function.
	ErrToolDecodeNil = errors.New("tool decode function cannot be nil")

	// ErrToolAlreadyRegistered is returned when registering a duplicate.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrMissingRequiredArg is returned when a required argument is missing.
	ErrMissingRequiredArg = errors.New("missing required argument")

	// ErrInvalidArgs is returned when arguments fail to decode or validate.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrUnexpectedRequest is returned when Execute receives another tool's request.
	ErrUnexpectedRequest = errors.New("unexpected request type")
)
