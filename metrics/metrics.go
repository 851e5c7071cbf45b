// Package metrics exports graph execution metrics to Prometheus.
//
//	m, err := metrics.NewNodeMetrics(prometheus.DefaultRegisterer, "langgraph")
//	runnable, err := g.Compile(graph.WithListeners(m))
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jiujiechenfeng/langgraph-source/graph"
)

// Status label values of the executions counter.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// NodeMetrics is a graph.NodeListener recording one counter sample and one
// duration observation per node execution.
type NodeMetrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	timer      *graph.NodeTimer
}

var _ graph.NodeListener = (*NodeMetrics)(nil)

// NewNodeMetrics creates the collectors under namespace and registers them with
// reg. On error nothing stays registered, so the call can be retried.
func NewNodeMetrics(reg prometheus.Registerer, namespace string) (*NodeMetrics, error) {
	m := &NodeMetrics{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_executions_total",
				Help:      "Total number of node executions by outcome.",
			},
			[]string{"node", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of node executions.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node"},
		),
		timer: graph.NewNodeTimer(),
	}

	collectors := []prometheus.Collector{m.executions, m.duration}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, registered := range collectors[:i] {
				reg.Unregister(registered)
			}
			return nil, fmt.Errorf("failed to register node metrics: %w", err)
		}
	}
	return m, nil
}

// OnNodeEvent implements graph.NodeListener.
func (m *NodeMetrics) OnNodeEvent(ctx context.Context, event graph.NodeEvent, nodeName string, _ graph.State, _ error) {
	switch event {
	case graph.NodeEventStart:
		m.timer.Start(ctx, nodeName)
	case graph.NodeEventComplete:
		m.observe(ctx, nodeName, StatusOK)
	case graph.NodeEventError:
		m.observe(ctx, nodeName, StatusError)
	}
}

func (m *NodeMetrics) observe(ctx context.Context, node, status string) {
	m.executions.WithLabelValues(node, status).Inc()
	m.duration.WithLabelValues(node).Observe(m.timer.Stop(ctx, node).Seconds())
}
