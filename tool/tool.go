package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Tool is a named side-effecting capability a model may request.
// Args are the decoded JSON arguments of the tool call.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ParametersProvider is implemented by tools that describe their arguments
// with a JSON schema object.
type ParametersProvider interface {
	Parameters() map[string]any
}

// Func is the signature of a function tool.
type Func func(ctx context.Context, args map[string]any) (any, error)

type funcTool struct {
	name        string
	description string
	params      map[string]any
	fn          Func
}

// New creates a tool from a function. params is the JSON schema of the
// arguments and may be nil.
func New(name, description string, params map[string]any, fn Func) Tool {
	return &funcTool{name: name, description: description, params: params, fn: fn}
}

func (t *funcTool) Name() string        { return t.name }
func (t *funcTool) Description() string { return t.description }

func (t *funcTool) Parameters() map[string]any {
	return t.params
}

func (t *funcTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}

// langchainTool adapts a langchaingo tool, whose input is a single string.
type langchainTool struct {
	inner tools.Tool
}

// FromLangchain wraps a langchaingo tool. The string input is args["input"]
// when present, otherwise the JSON encoding of args.
func FromLangchain(t tools.Tool) Tool {
	return &langchainTool{inner: t}
}

func (t *langchainTool) Name() string        { return t.inner.Name() }
func (t *langchainTool) Description() string { return t.inner.Description() }

func (t *langchainTool) Parameters() map[string]any {
	return ObjectSchema(map[string]any{
		"input": StringProperty("input passed to the tool"),
	}, "input")
}

func (t *langchainTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if s, ok := args["input"].(string); ok {
		return t.inner.Call(ctx, s)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool input: %w", err)
	}
	return t.inner.Call(ctx, string(data))
}

// Definitions converts tools to function declarations for llms.WithTools.
func Definitions(ts []Tool) []llms.Tool {
	defs := make([]llms.Tool, 0, len(ts))
	for _, t := range ts {
		params := map[string]any{"type": "object", "properties": map[string]any{}}
		if p, ok := t.(ParametersProvider); ok && p.Parameters() != nil {
			params = p.Parameters()
		}
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}
	return defs
}

// ObjectSchema builds a JSON schema object with the given properties.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty is a JSON schema string property.
func StringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// IntegerProperty is a JSON schema integer property.
func IntegerProperty(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// StringArg returns a required string argument.
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

// IntArg returns a required integer argument. JSON numbers without a
// fractional part and numeric strings are accepted.
func IntArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer: %w", key, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer, got %T", key, v)
	}
}
