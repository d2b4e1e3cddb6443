// Package toolkit holds the tool and resource registries: named, schema
// validated operations that the protocol server dispatches to. Handlers are
// registered at startup and immutable afterwards; dispatch catches every
// handler failure so a broken tool can never take the server down.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler is the type-erased execution function stored in the registry. It
// receives raw, already schema-validated JSON arguments.
type Handler func(ctx context.Context, raw json.RawMessage) (Result, error)

// Tool is one registered operation: metadata, an input schema, and the
// handler. Immutable after construction.
type Tool struct {
	Name        string
	Title       string
	Description string
	Schema      *jsonschema.Schema

	resolved *jsonschema.Resolved
	handler  Handler
}

// New creates a Tool whose input schema is inferred from In. The generic
// handler keeps compile-time type safety; type erasure happens here so the
// registry can store heterogeneous tools, the same trick the rest of the
// codebase uses for subprocess specs.
//
// Unknown argument fields are rejected: the inferred schema is closed with
// additionalProperties: false.
func New[In any](name, title, description string, fn func(context.Context, In) (Result, error)) (*Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if description == "" {
		return nil, fmt.Errorf("tool %q: description is required", name)
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %q: handler is required", name)
	}

	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("tool %q: inferring schema: %w", name, err)
	}
	if schema.AdditionalProperties == nil {
		schema.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("tool %q: resolving schema: %w", name, err)
	}

	handler := func(ctx context.Context, raw json.RawMessage) (Result, error) {
		var in In
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &in); err != nil {
				return Result{}, fmt.Errorf("decoding arguments: %w", err)
			}
		}
		return fn(ctx, in)
	}

	return &Tool{
		Name:        name,
		Title:       title,
		Description: description,
		Schema:      schema,
		resolved:    resolved,
		handler:     handler,
	}, nil
}

// validate checks raw arguments against the resolved schema. Returns nil on
// success; the error message names the offending field.
func (t *Tool) validate(raw json.RawMessage) error {
	var value any = map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("arguments are not valid JSON: %w", err)
		}
	}
	return t.resolved.Validate(value)
}
