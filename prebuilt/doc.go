// Package prebuilt provides ready-made graphs and nodes built on the graph package.
//
// # Tool dispatch
//
// ToolNode is a graph node that executes the tool calls requested by the latest
// AI message and appends one tool message per call. Unknown tools and tool
// failures are reported to the model as message content; they never fail the run.
// ToolsCondition is the matching router.
//
// # Tool-calling agent
//
//	agent, err := prebuilt.CreateToolAgent(model, []tool.Tool{tool.Weather(), tool.Multiply()},
//		prebuilt.WithSystemMessage("You are a helpful assistant."),
//		prebuilt.WithCheckpointer(memory.NewMemoryCheckpointStore()),
//	)
//	final, err := agent.InvokeWithConfig(ctx, graph.State{
//		graph.MessagesKey: []graph.Message{graph.HumanMessage("What is the weather in Beijing?")},
//	}, &graph.Config{ThreadID: "user-42"})
//
// # Chat
//
// ChatAgent keeps a multi-turn conversation in a checkpointer and sends only
// the new message on each turn:
//
//	chat, _ := prebuilt.NewChatAgent(model)
//	reply, err := chat.Chat(ctx, "hi")
//	reply, err = chat.Stream(ctx, "tell me more", func(chunk string) { fmt.Print(chunk) })
//
// RenderTranscriptHTML and RenderTranscriptTerminal format a conversation for
// display.
package prebuilt
