// Package graph provides the state-graph construction and execution engine.
//
// A graph is a set of named nodes connected by edges. Every node reads the shared
// State and returns a partial update; the Schema decides, field by field, how the
// update is merged into the state (overwrite, append, or a custom Reducer).
//
// # Core Concepts
//
// ## Schema
// Every field a node may write is declared up front with NewField, together with
// its reducer and its Go type. Writing an undeclared field fails with a
// *ConfigurationError. NewMessageSchema declares the conventional "messages" field
// merged by AddMessages.
//
// ## Nodes and Edges
// AddEdge connects two nodes unconditionally. AddConditionalEdges attaches a Router
// that inspects the merged state and returns a key looked up in a mapping. Each
// node has exactly one outgoing edge set; END terminates the run.
//
// ## Runnable
// Compile validates the structure and returns a Runnable. Invoke runs to END;
// Stream and Steps run one step each time the caller asks for the next event.
// With a checkpointer and a thread id
// the state is persisted after each step and the next run of the same thread
// resumes from it.
//
// # Example Usage
//
//	schema, _ := graph.NewSchema(
//		graph.NewField[string]("text", graph.OverwriteReducer),
//		graph.NewField[[]string]("trace", graph.AppendReducer),
//	)
//	g := graph.NewStateGraph(schema)
//
//	g.AddNode("upper", "uppercases the text", func(ctx context.Context, s graph.State) (graph.State, error) {
//		text, _ := graph.GetAs[string](s, "text")
//		return graph.State{"text": strings.ToUpper(text), "trace": "upper"}, nil
//	})
//	g.SetEntryPoint("upper")
//	g.AddEdge("upper", graph.END)
//
//	runnable, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	final, err := runnable.Invoke(ctx, graph.State{"text": "hello"})
//
// ## Resuming a conversation
//
//	runnable, _ := g.Compile(graph.WithCheckpointer(memory.NewMemoryCheckpointStore()))
//	cfg := &graph.Config{ThreadID: "user-42"}
//	runnable.InvokeWithConfig(ctx, graph.State{"messages": []graph.Message{graph.HumanMessage("hi")}}, cfg)
//	runnable.InvokeWithConfig(ctx, graph.State{"messages": []graph.Message{graph.HumanMessage("again")}}, cfg)
//
// # Errors
//
// Structural defects are reported by Compile in a *GraphValidationError. At run
// time a router returning an unmapped key yields *RoutingError, a failing or
// panicking node yields *NodeError, and exceeding the step limit yields
// *StepLimitError. All of them unwrap to the sentinel errors of this package.
package graph
