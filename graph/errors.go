package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrAmbiguousEdges is returned when a node declares more than one outgoing edge set.
	ErrAmbiguousEdges = errors.New("node has more than one outgoing edge set")

	// ErrUnreachableNode is returned when a node cannot be reached from the entry point.
	ErrUnreachableNode = errors.New("node is not reachable from entry point")

	// ErrInvalidNodeName is returned for empty node names or names that collide with END.
	ErrInvalidNodeName = errors.New("invalid node name")

	// ErrDuplicateName is returned when a node or field is registered twice.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUndeclaredField is returned when a field without a declared reducer is written.
	ErrUndeclaredField = errors.New("field has no declared reducer")

	// ErrRoutingKey is returned when a router returns a key absent from its mapping.
	ErrRoutingKey = errors.New("router returned unknown key")

	// ErrStepLimitExceeded is returned when a run executes more steps than allowed.
	ErrStepLimitExceeded = errors.New("step limit exceeded")

	// ErrNodePanic is wrapped by NodeError when a node panics.
	ErrNodePanic = errors.New("node panicked")

	// ErrNoCheckpointer is returned by state accessors of a runnable compiled without a checkpointer.
	ErrNoCheckpointer = errors.New("no checkpointer configured")

	// ErrStreamClosed is reported by a stream closed before its run finished.
	ErrStreamClosed = errors.New("stream closed")
)

// ConfigurationError reports a write to, or a persisted value for, a field the
// schema does not declare.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: field %q has no declared reducer", e.Field)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrUndeclaredField
}

// DuplicateNameError is returned when a node or schema field name is already taken.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name: %s", e.Kind, e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// UnknownStepError is returned when a name refers to a node that was never added.
type UnknownStepError struct {
	Name string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNodeNotFound, e.Name)
}

func (e *UnknownStepError) Unwrap() error {
	return ErrNodeNotFound
}

// GraphValidationError collects every structural defect found by Compile.
type GraphValidationError struct {
	Errs []error
}

func (e *GraphValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "graph validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual defects to errors.Is and errors.As.
func (e *GraphValidationError) Unwrap() []error {
	return e.Errs
}

// RoutingError is returned when a router picks a key its edge mapping does not know.
type RoutingError struct {
	Node string
	Key  string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing error at node %s: key %q not in mapping", e.Node, e.Key)
}

func (e *RoutingError) Unwrap() error {
	return ErrRoutingKey
}

// StepLimitError is returned when a run would execute more than Limit steps.
type StepLimitError struct {
	Limit int
	Node  string
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit of %d exceeded before node %s", e.Limit, e.Node)
}

func (e *StepLimitError) Unwrap() error {
	return ErrStepLimitExceeded
}

// NodeError wraps a failure returned (or a panic raised) by a node function.
// Model and tool collaborators that fail outside the tool node surface here.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("error in node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
