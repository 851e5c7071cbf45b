package graph

import "context"

type threadIDKey struct{}

type nodeNameKey struct{}

type runIDKey struct{}

// WithThreadID returns a context carrying the conversation thread id.
// The executor sets it for every run that has a thread id.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, threadID)
}

// ThreadIDFromContext returns the thread id of the current run, or "".
func ThreadIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(threadIDKey{}).(string)
	return id
}

func withNodeName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, nodeNameKey{}, name)
}

// NodeNameFromContext returns the name of the node currently executing, or "".
func NodeNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(nodeNameKey{}).(string)
	return name
}

func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the id the executor assigns to each run, or "".
// Unlike the thread id it is unique per Invoke or Stream call.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
