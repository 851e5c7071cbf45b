package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiujiechenfeng/langgraph-source/graph"
)

func loopGraph(t *testing.T, failAt int) *graph.StateGraph {
	t.Helper()
	schema, err := graph.NewSchema(graph.NewField[int]("count", graph.OverwriteReducer))
	require.NoError(t, err)

	g := graph.NewStateGraph(schema)
	require.NoError(t, g.AddNode("step", "decrements the counter", func(_ context.Context, s graph.State) (graph.State, error) {
		count, _ := graph.GetAs[int](s, "count")
		if count == failAt {
			return nil, errors.New("failed")
		}
		return graph.State{"count": count - 1}, nil
	}))
	require.NoError(t, g.SetEntryPoint("step"))
	g.AddConditionalEdges("step", func(_ context.Context, s graph.State) string {
		count, _ := graph.GetAs[int](s, "count")
		if count > 0 {
			return "loop"
		}
		return "end"
	}, map[string]string{"loop": "step", "end": graph.END})
	return g
}

func TestNodeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewNodeMetrics(reg, "test")
	require.NoError(t, err)

	runnable, err := loopGraph(t, -1).Compile(graph.WithListeners(m))
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), graph.State{"count": 3})
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.executions.WithLabelValues("step", StatusOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.executions.WithLabelValues("step", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNodeMetrics_Error(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewNodeMetrics(reg, "test")
	require.NoError(t, err)

	runnable, err := loopGraph(t, 1).Compile(graph.WithListeners(m))
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), graph.State{"count": 3})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.executions.WithLabelValues("step", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.executions.WithLabelValues("step", StatusError)))
}

func TestNewNodeMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewNodeMetrics(reg, "dup")
	require.NoError(t, err)

	_, err = NewNodeMetrics(reg, "dup")
	assert.Error(t, err)
}

func TestNewNodeMetrics_FailedRegistrationRollsBack(t *testing.T) {
	reg := prometheus.NewRegistry()
	conflict := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "retry",
		Name:      "node_duration_seconds",
		Help:      "Something else.",
	})
	require.NoError(t, reg.Register(conflict))

	_, err := NewNodeMetrics(reg, "retry")
	require.Error(t, err)

	require.True(t, reg.Unregister(conflict))
	m, err := NewNodeMetrics(reg, "retry")
	require.NoError(t, err)
	assert.NotNil(t, m)
}
