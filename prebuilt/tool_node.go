package prebuilt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jiujiechenfeng/langgraph-source/graph"
	"github.com/jiujiechenfeng/langgraph-source/tool"
)

// Routing keys returned by ToolsCondition.
const (
	RouteTools = "tools"
	RouteEnd   = "end"
)

// ToolNode executes the tool calls requested by the latest AI message.
// Tool failures never fail the node; they are reported to the model as the
// content of the tool message.
type ToolNode struct {
	tools       map[string]tool.Tool
	messagesKey string
}

// NewToolNode creates a ToolNode over a fixed tool registry. When two tools
// share a name the later one wins.
func NewToolNode(tools ...tool.Tool) *ToolNode {
	registry := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
	}
	return &ToolNode{tools: registry, messagesKey: graph.MessagesKey}
}

// WithMessagesKey makes the node read and write the conversation under key.
func (n *ToolNode) WithMessagesKey(key string) *ToolNode {
	n.messagesKey = key
	return n
}

// Invoke implements graph.NodeFunc.
func (n *ToolNode) Invoke(ctx context.Context, state graph.State) (graph.State, error) {
	msgs, _ := graph.GetAs[[]graph.Message](state, n.messagesKey)
	last, ok := graph.LastAIMessage(msgs)
	if !ok || len(last.ToolCalls) == 0 {
		return graph.State{}, nil
	}

	results := make([]graph.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		results = append(results, graph.ToolMessage(call.ID, call.Name, n.dispatch(ctx, call)))
	}
	return graph.State{n.messagesKey: results}, nil
}

func (n *ToolNode) dispatch(ctx context.Context, call graph.ToolCall) (content string) {
	t, ok := n.tools[call.Name]
	if !ok {
		return "Unknown tool: " + call.Name
	}

	defer func() {
		if p := recover(); p != nil {
			content = fmt.Sprintf("Tool error: panic: %v", p)
		}
	}()

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	result, err := t.Call(ctx, args)
	if err != nil {
		return "Tool error: " + err.Error()
	}
	return formatResult(result)
}

// formatResult renders strings and scalars as text and everything else as JSON.
func formatResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case []byte:
		return string(r)
	case fmt.Stringer:
		return r.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(r)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// ToolsCondition routes to RouteTools when the last message is an AI message
// requesting tool calls, and to RouteEnd otherwise. It reads graph.MessagesKey;
// use ToolNode.Condition for a node with another messages key.
func ToolsCondition(_ context.Context, state graph.State) string {
	return toolsRoute(graph.MessagesFrom(state))
}

// Condition is ToolsCondition over the node's own messages key.
func (n *ToolNode) Condition(_ context.Context, state graph.State) string {
	msgs, _ := graph.GetAs[[]graph.Message](state, n.messagesKey)
	return toolsRoute(msgs)
}

func toolsRoute(msgs []graph.Message) string {
	if len(msgs) == 0 {
		return RouteEnd
	}
	last := msgs[len(msgs)-1]
	if last.Role == graph.RoleAI && len(last.ToolCalls) > 0 {
		return RouteTools
	}
	return RouteEnd
}
