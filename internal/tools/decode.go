package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their argument names, not Go names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decoder returns a DecodeFunc for request type T. Arguments are decoded by
// their JSON names and validated with `validate` struct tags. Non-integral
// numbers for integer fields are rejected.
func Decoder[T Request]() DecodeFunc {
	return func(args map[string]any) (Request, error) {
		var req T

		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidArgs, describeDecodeError(err))
		}
		if err := Validate(req); err != nil {
			return nil, err
		}
		return req, nil
	}
}

// Validate checks req against its `validate` struct tags, reporting the
// first failing field by its argument name.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, formatValidationError(err))
	}
	return nil
}

// Typed adapts a handler for request type T to an ExecuteFunc.
func Typed[T Request](fn func(ctx context.Context, req T) (string, error)) ExecuteFunc {
	return func(ctx context.Context, req Request) (string, error) {
		typed, ok := req.(T)
		if !ok {
			return "", fmt.Errorf("%w: %T", ErrUnexpectedRequest, req)
		}
		return fn(ctx, typed)
	}
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

// formatValidationError converts validator errors to a readable message for
// the first failing field.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, param, fmt.Sprint(e.Value()))
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
