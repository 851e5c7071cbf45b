package graph

import (
	"context"
	"errors"
	"iter"
)

// StepEvent is emitted after each completed step, once its update is merged
// (and persisted, if checkpointing), before the next node is chosen.
type StepEvent struct {
	// Step is the 1-based index of the step within the run
	Step int

	// Node is the name of the node that produced the update
	Node string

	// Update is the partial update the node returned
	Update State
}

// errStopped ends a run whose consumer stopped asking for steps.
var errStopped = errors.New("stopped by consumer")

// Steps returns an iterator that runs the graph one step per iteration. The
// next node is only chosen and run when the caller asks for the next pair, so
// breaking out of the loop after step N guarantees that no later node ran.
// A failed run yields a zero StepEvent with the error as its last pair.
func (r *Runnable) Steps(ctx context.Context, input State, config *Config) iter.Seq2[StepEvent, error] {
	return r.steps(ctx, input, config, nil)
}

func (r *Runnable) steps(ctx context.Context, input State, config *Config, final *State) iter.Seq2[StepEvent, error] {
	return func(yield func(StepEvent, error) bool) {
		emit := func(_ context.Context, ev StepEvent) error {
			if !yield(ev, nil) {
				return errStopped
			}
			return nil
		}

		state, err := r.run(ctx, input, config, emit)
		if errors.Is(err, errStopped) {
			return
		}
		if err != nil {
			yield(StepEvent{}, err)
			return
		}
		if final != nil {
			*final = state
		}
	}
}

// StreamResult is a run driven by its reader, in the manner of sql.Rows: each
// call to Next runs exactly one step. It is not safe for concurrent use.
//
//	res := runnable.Stream(ctx, input)
//	defer res.Close()
//	for res.Next() {
//		ev := res.Event()
//		...
//	}
//	if err := res.Err(); err != nil {
//		...
//	}
//	final := res.Result()
//
// A StreamResult that is neither drained nor closed keeps its run suspended,
// together with the thread lock it holds.
type StreamResult struct {
	next func() (StepEvent, error, bool)
	stop func()

	event StepEvent
	final State
	err   error
	done  bool
}

// Stream starts a run that advances one step per call to Next.
func (r *Runnable) Stream(ctx context.Context, input State) *StreamResult {
	return r.StreamWithConfig(ctx, input, nil)
}

// StreamWithConfig is Stream with per-run settings.
func (r *Runnable) StreamWithConfig(ctx context.Context, input State, config *Config) *StreamResult {
	s := &StreamResult{}
	s.next, s.stop = iter.Pull2(r.steps(ctx, input, config, &s.final))
	return s
}

// Next runs the next step and reports whether it produced an event. It
// returns false once the run finished, failed or was closed.
func (s *StreamResult) Next() bool {
	if s.done {
		return false
	}
	ev, err, ok := s.next()
	if !ok || err != nil {
		s.err = err
		s.finish()
		return false
	}
	s.event = ev
	return true
}

// Event returns the event of the step run by the last call to Next.
func (s *StreamResult) Event() StepEvent {
	return s.event
}

// Err returns the error that ended the run, ErrStreamClosed if Close stopped
// it early, or nil.
func (s *StreamResult) Err() error {
	return s.err
}

// Result returns the final state of a run that reached END, nil otherwise.
func (s *StreamResult) Result() State {
	if s.err != nil {
		return nil
	}
	return s.final
}

// Close stops the run before its next step and releases it. Closing a
// finished stream is a no-op.
func (s *StreamResult) Close() {
	if s.done {
		return
	}
	s.err = ErrStreamClosed
	s.finish()
}

func (s *StreamResult) finish() {
	s.done = true
	s.stop()
}

// Collect drains a stream, returning every event, the final state and the error.
func (s *StreamResult) Collect() ([]StepEvent, State, error) {
	defer s.Close()

	var events []StepEvent
	for s.Next() {
		events = append(events, s.Event())
	}
	return events, s.Result(), s.Err()
}
