package graph

import (
	"context"
	"sync"
	"time"

	"github.com/jiujiechenfeng/langgraph-source/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// NodeListener defines the interface for node event listeners.
// For start events state is the node input; for complete events it is the node's
// partial update.
type NodeListener interface {
	// OnNodeEvent is called when a node event occurs
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state State, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, event NodeEvent, nodeName string, state State, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state State, err error) {
	f(ctx, event, nodeName, state, err)
}

// notifyListeners calls every listener in registration order.
// A panicking listener is skipped and never affects the run.
func (r *Runnable) notifyListeners(ctx context.Context, event NodeEvent, node string, state State, err error) {
	for _, l := range r.listeners {
		func() {
			defer func() {
				if p := recover(); p != nil {
					r.logger.Warn("listener panicked on %s event of node %s: %v", event, node, p)
				}
			}()
			l.OnNodeEvent(ctx, event, node, state, err)
		}()
	}
}

// LoggingListener logs node events with their duration.
type LoggingListener struct {
	logger log.Logger
	timer  *NodeTimer
}

// NewLoggingListener creates a listener that writes node events to logger.
func NewLoggingListener(logger log.Logger) *LoggingListener {
	return &LoggingListener{logger: logger, timer: NewNodeTimer()}
}

// OnNodeEvent implements NodeListener.
func (l *LoggingListener) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state State, err error) {
	switch event {
	case NodeEventStart:
		l.timer.Start(ctx, nodeName)
		l.logger.Info("node %s started (thread=%q)", nodeName, ThreadIDFromContext(ctx))
	case NodeEventComplete:
		elapsed := l.timer.Stop(ctx, nodeName).Round(time.Microsecond)
		l.logger.Info("node %s completed in %s, updated %d field(s)", nodeName, elapsed, len(state))
	case NodeEventError:
		elapsed := l.timer.Stop(ctx, nodeName).Round(time.Microsecond)
		l.logger.Error("node %s failed after %s: %v", nodeName, elapsed, err)
	}
}

// NodeTimer measures node executions for listeners. Executions are keyed by
// run id and node name, so one timer can serve concurrent runs, with or
// without a thread id.
type NodeTimer struct {
	mu     sync.Mutex
	starts map[string]time.Time
}

// NewNodeTimer creates an empty timer.
func NewNodeTimer() *NodeTimer {
	return &NodeTimer{starts: make(map[string]time.Time)}
}

func timerKey(ctx context.Context, node string) string {
	id := RunIDFromContext(ctx)
	if id == "" {
		id = ThreadIDFromContext(ctx)
	}
	return id + "\x00" + node
}

// Start records the start of node.
func (t *NodeTimer) Start(ctx context.Context, node string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.starts[timerKey(ctx, node)] = time.Now()
}

// Stop returns the time since the matching Start, or 0 if there was none.
func (t *NodeTimer) Stop(ctx context.Context, node string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := timerKey(ctx, node)
	start, ok := t.starts[key]
	if !ok {
		return 0
	}
	delete(t.starts, key)
	return time.Since(start)
}
