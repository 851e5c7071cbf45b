// Package tool defines the tools an agent graph can dispatch to.
//
// A Tool has a unique name, a description shown to the model and a Call method
// taking the decoded JSON arguments of a tool call. Tools that also implement
// ParametersProvider publish a JSON schema for those arguments, which
// Definitions turns into langchaingo function declarations:
//
//	tools := []tool.Tool{tool.Weather(), tool.Multiply()}
//	resp, err := model.GenerateContent(ctx, msgs, llms.WithTools(tool.Definitions(tools)))
//
// # Function tools
//
//	double := tool.New("double", "doubles x",
//		tool.ObjectSchema(map[string]any{"x": tool.IntegerProperty("value")}, "x"),
//		func(ctx context.Context, args map[string]any) (any, error) {
//			x, err := tool.IntArg(args, "x")
//			if err != nil {
//				return nil, err
//			}
//			return 2 * x, nil
//		})
//
// # Bundled tools
//
// Weather and Multiply are small deterministic tools used by the examples.
// WebFetchTool downloads a page and returns its text. BraveSearch queries the
// Brave Search API. FromLangchain adapts any langchaingo tools.Tool.
package tool
