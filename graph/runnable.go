package graph

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/jiujiechenfeng/langgraph-source/log"
	"github.com/jiujiechenfeng/langgraph-source/store"
)

// Config holds per-run settings.
type Config struct {
	// ThreadID identifies the conversation. Runs with a thread id on a runnable
	// with a checkpointer resume from, and persist to, that thread.
	ThreadID string

	// MaxSteps overrides the compiled step limit when positive.
	MaxSteps int

	// Metadata is stored with every checkpoint of the run.
	Metadata map[string]any
}

// Runnable is a compiled graph. It is safe for concurrent use; runs that share
// a thread id are serialized.
type Runnable struct {
	schema      *Schema
	nodes       map[string]Node
	edges       map[string]string
	conditional map[string]ConditionalEdge
	entryPoint  string
	structure   Structure

	checkpointer store.CheckpointStore
	locker       store.Locker
	maxSteps     int
	logger       log.Logger
	listeners    []NodeListener
}

// Structure returns a description of the compiled graph. Compiling the same
// unmodified graph twice yields equal structures.
func (r *Runnable) Structure() Structure {
	s := r.structure
	s.Nodes = append([]string(nil), s.Nodes...)
	s.Edges = append([]Edge(nil), s.Edges...)
	s.Conditional = make(map[string]map[string]string, len(r.structure.Conditional))
	for from, m := range r.structure.Conditional {
		s.Conditional[from] = maps.Clone(m)
	}
	return s
}

// Schema returns the reducer registry the runnable merges updates with.
func (r *Runnable) Schema() *Schema {
	return r.schema
}

// Invoke runs the graph to completion and returns the final state.
func (r *Runnable) Invoke(ctx context.Context, input State) (State, error) {
	return r.InvokeWithConfig(ctx, input, nil)
}

// InvokeWithConfig runs the graph with per-run settings.
func (r *Runnable) InvokeWithConfig(ctx context.Context, input State, config *Config) (State, error) {
	return r.run(ctx, input, config, nil)
}

// emitFunc receives one event per completed step, before routing.
type emitFunc func(ctx context.Context, event StepEvent) error

func (r *Runnable) run(ctx context.Context, input State, config *Config, emit emitFunc) (State, error) {
	if config == nil {
		config = &Config{}
	}
	maxSteps := r.maxSteps
	if config.MaxSteps > 0 {
		maxSteps = config.MaxSteps
	}

	ctx = withRunID(ctx, uuid.NewString())
	threadID := config.ThreadID
	if threadID != "" {
		ctx = WithThreadID(ctx, threadID)
	}
	persist := r.checkpointer != nil && threadID != ""

	if persist {
		unlock, err := r.locker.Lock(ctx, threadID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock thread %s: %w", threadID, err)
		}
		defer unlock()
	}

	state, version, err := r.initialState(ctx, threadID, persist, input)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("run started at %s (thread=%q, max steps=%d)", r.entryPoint, threadID, maxSteps)

	current := r.entryPoint
	for step := 1; ; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxSteps > 0 && step > maxSteps {
			r.logger.Error("step limit %d reached before node %s", maxSteps, current)
			return nil, &StepLimitError{Limit: maxSteps, Node: current}
		}

		r.logger.Debug("step %d: running node %s", step, current)
		update, err := r.executeNode(ctx, current, state)
		if err != nil {
			r.logger.Error("step %d: %v", step, err)
			return nil, err
		}

		state, err = r.schema.Update(state, update)
		if err != nil {
			return nil, fmt.Errorf("failed to apply update from node %s: %w", current, err)
		}

		if persist {
			version++
			if err := r.saveCheckpoint(ctx, threadID, current, step, version, state, config.Metadata); err != nil {
				return nil, err
			}
		}

		if emit != nil {
			if err := emit(ctx, StepEvent{Step: step, Node: current, Update: update}); err != nil {
				return nil, err
			}
		}

		next, err := r.next(ctx, current, state)
		if err != nil {
			r.logger.Error("step %d: %v", step, err)
			return nil, err
		}
		r.logger.Debug("step %d: %s -> %s", step, current, next)
		if next == END {
			r.logger.Debug("run finished after %d step(s)", step)
			return state, nil
		}
		current = next
	}
}

// initialState loads the persisted state of the thread, if any, and merges the input on top.
func (r *Runnable) initialState(ctx context.Context, threadID string, persist bool, input State) (State, int, error) {
	base := State{}
	version := 0
	if persist {
		cp, err := r.checkpointer.Get(ctx, threadID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, 0, fmt.Errorf("failed to load checkpoint for thread %s: %w", threadID, err)
		default:
			base, err = r.schema.Decode(cp.State)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to restore checkpoint for thread %s: %w", threadID, err)
			}
			version = cp.Version
			r.logger.Debug("resuming thread %s from version %d", threadID, version)
		}
	}

	state, err := r.schema.Update(base, input)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to apply input: %w", err)
	}
	return state, version, nil
}

func (r *Runnable) executeNode(ctx context.Context, name string, state State) (update State, err error) {
	node, ok := r.nodes[name]
	if !ok {
		return nil, &UnknownStepError{Name: name}
	}

	ctx = withNodeName(ctx, name)
	r.notifyListeners(ctx, NodeEventStart, name, state, nil)

	defer func() {
		if p := recover(); p != nil {
			err = &NodeError{Node: name, Err: fmt.Errorf("%w: %v", ErrNodePanic, p)}
			update = nil
		}
		if err != nil {
			r.notifyListeners(ctx, NodeEventError, name, state, err)
			return
		}
		r.notifyListeners(ctx, NodeEventComplete, name, update, nil)
	}()

	update, err = node.Function(ctx, state.Clone())
	if err != nil {
		return nil, &NodeError{Node: name, Err: err}
	}
	return update, nil
}

// next resolves the successor of node given the merged state.
func (r *Runnable) next(ctx context.Context, node string, state State) (string, error) {
	if ce, ok := r.conditional[node]; ok {
		key, err := route(ctx, node, ce.Router, state)
		if err != nil {
			return "", err
		}
		if ce.Mapping == nil {
			if _, known := r.nodes[key]; !known && key != END {
				return "", &RoutingError{Node: node, Key: key}
			}
			return key, nil
		}
		dest, ok := ce.Mapping[key]
		if !ok {
			return "", &RoutingError{Node: node, Key: key}
		}
		return dest, nil
	}
	if to, ok := r.edges[node]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, node)
}

// route calls a router, turning a panic into a NodeError of the routed node.
func route(ctx context.Context, node string, router Router, state State) (key string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &NodeError{Node: node, Err: fmt.Errorf("%w: router: %v", ErrNodePanic, p)}
		}
	}()
	return router(ctx, state.Clone()), nil
}

func (r *Runnable) saveCheckpoint(ctx context.Context, threadID, node string, step, version int, state State, metadata map[string]any) error {
	data, err := r.schema.Encode(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint for thread %s: %w", threadID, err)
	}
	cp := &store.Checkpoint{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		NodeName:  node,
		Step:      step,
		Version:   version,
		State:     data,
		Metadata:  maps.Clone(metadata),
		Timestamp: time.Now(),
	}
	if err := r.checkpointer.Put(ctx, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}

// GetState returns the latest persisted state of a thread.
// The error wraps store.ErrNotFound when the thread has no checkpoint.
func (r *Runnable) GetState(ctx context.Context, threadID string) (State, error) {
	if r.checkpointer == nil {
		return nil, ErrNoCheckpointer
	}
	cp, err := r.checkpointer.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint for thread %s: %w", threadID, err)
	}
	state, err := r.schema.Decode(cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint for thread %s: %w", threadID, err)
	}
	return state, nil
}

// ClearState deletes the persisted state of a thread.
func (r *Runnable) ClearState(ctx context.Context, threadID string) error {
	if r.checkpointer == nil {
		return ErrNoCheckpointer
	}
	unlock, err := r.locker.Lock(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to lock thread %s: %w", threadID, err)
	}
	defer unlock()

	if err := r.checkpointer.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("failed to delete checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}
