// Package llm provides the model client and schema-constrained
// extraction used by the pipeline stages.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"

	"github.com/sqlpilot/sqlpilot/internal/log"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message.
type Turn struct {
	Role    string
	Content string
}

// Schema declares the output shape a model call must conform to.
type Schema struct {
	Name       string
	Parameters map[string]any
}

type Request struct {
	System   string
	Messages []Turn

	// Schema, when set, constrains the completion to a JSON document
	// matching it.
	Schema *Schema
}

type Response struct {
	Content string
}

// Completer is the single-shot model invocation interface.
type Completer interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// StructuredOutputError indicates a model call's output failed to match
// its declared contract after the bounded retry.
type StructuredOutputError struct {
	Name string
	Err  error
}

func (r *StructuredOutputError) Error() string {
	return fmt.Sprintf("model output did not match contract %s: %v", r.Name, r.Err)
}

func (r *StructuredOutputError) Unwrap() error {
	return r.Err
}

// Extract runs a schema-constrained completion and decodes the result
// into T. Malformed output is retried once, then fails hard.
func Extract[T any](ctx context.Context, c Completer, system string, schema *Schema, turns []Turn) (*T, error) {
	req := &Request{
		System:   system,
		Messages: turns,
		Schema:   schema,
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := c.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		var out T
		if err := tryUnmarshal(resp.Content, &out); err != nil {
			log.Debugf("decode %s attempt %d: %v\n", schema.Name, attempt, err)
			lastErr = err
			continue
		}
		return &out, nil
	}
	return nil, &StructuredOutputError{Name: schema.Name, Err: lastErr}
}

// tryUnmarshal tries to unmarshal the data into the v.
// If it fails, it will try to repair the data and unmarshal it again.
func tryUnmarshal(data string, v any) error {
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(data)
	if err != nil {
		return fmt.Errorf("failed to repair JSON: %v", err)
	}
	return json.Unmarshal([]byte(repaired), v)
}
