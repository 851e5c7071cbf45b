// Package langgraph is a stateful graph engine for building agent workflows in Go.
//
// A workflow is a graph of named nodes sharing a State. Each node returns a
// partial update that a per-field reducer merges into the state; routers pick
// the next node from the merged state until the run reaches END. Runs keyed by
// a thread id are checkpointed after every step and resumed on the next call.
//
// # Packages
//
//   - graph: schema and reducers, messages, graph construction, the executor,
//     streaming, listeners and Mermaid export.
//   - store: the checkpoint store interface, with memory, file, redis, sqlite
//     and postgres backends in its subpackages.
//   - tool: the tool interface, function tools, a langchaingo adapter and a few
//     bundled tools.
//   - prebuilt: the tool dispatcher node, a tool-calling agent, a multi-turn
//     chat agent and transcript rendering.
//   - log: the logger interface used throughout, with a golog adapter.
//
// # Quick Start
//
//	g := graph.NewMessageGraph()
//	g.AddNode("greet", "says hello", func(ctx context.Context, s graph.State) (graph.State, error) {
//		return graph.State{graph.MessagesKey: []graph.Message{graph.AIMessage("hello")}}, nil
//	})
//	g.SetEntryPoint("greet")
//	g.AddEdge("greet", graph.END)
//
//	runnable, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	final, err := runnable.Invoke(ctx, graph.State{
//		graph.MessagesKey: []graph.Message{graph.HumanMessage("hi")},
//	})
//
// See the examples directory for branching, loops, persistence and agents.
package langgraph
