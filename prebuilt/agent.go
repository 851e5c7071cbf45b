package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/jiujiechenfeng/langgraph-source/graph"
	"github.com/jiujiechenfeng/langgraph-source/log"
	"github.com/jiujiechenfeng/langgraph-source/store"
	"github.com/jiujiechenfeng/langgraph-source/tool"
)

// DefaultMaxSteps bounds an agent run when no WithMaxSteps option is given.
const DefaultMaxSteps = 25

// Node names of the tool agent graph.
const (
	AgentNode = "agent"
	ToolsNode = "tools"
)

// ErrNoChoices is returned when the model response carries no choice.
var ErrNoChoices = errors.New("model returned no choices")

// AgentOption configures CreateToolAgent and NewChatAgent.
type AgentOption func(*agentOptions)

type agentOptions struct {
	systemMessage string
	checkpointer  store.CheckpointStore
	maxSteps      int
	logger        log.Logger
	tools         []tool.Tool
	threadID      string
}

// WithSystemMessage prepends a system prompt to every model call. The prompt
// is not stored in the conversation.
func WithSystemMessage(message string) AgentOption {
	return func(o *agentOptions) {
		o.systemMessage = message
	}
}

// WithCheckpointer persists the conversation of each thread.
func WithCheckpointer(cp store.CheckpointStore) AgentOption {
	return func(o *agentOptions) {
		o.checkpointer = cp
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) AgentOption {
	return func(o *agentOptions) {
		o.maxSteps = n
	}
}

// WithLogger sets the logger of the agent and its graph.
func WithLogger(logger log.Logger) AgentOption {
	return func(o *agentOptions) {
		o.logger = logger
	}
}

// WithTools gives a ChatAgent tools to call.
func WithTools(tools ...tool.Tool) AgentOption {
	return func(o *agentOptions) {
		o.tools = append(o.tools, tools...)
	}
}

// WithThreadID fixes the thread of a ChatAgent instead of a random one.
func WithThreadID(threadID string) AgentOption {
	return func(o *agentOptions) {
		o.threadID = threadID
	}
}

func newAgentOptions(opts []AgentOption) *agentOptions {
	o := &agentOptions{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = &log.NoOpLogger{}
	}
	return o
}

// CreateToolAgent builds the tool-calling agent loop:
//
//	agent -> tools (when the model requested tool calls) -> agent
//	agent -> END   (otherwise)
//
// The conversation lives in the "messages" field.
func CreateToolAgent(model llms.Model, tools []tool.Tool, opts ...AgentOption) (*graph.Runnable, error) {
	return createToolAgent(model, tools, newAgentOptions(opts))
}

func createToolAgent(model llms.Model, tools []tool.Tool, o *agentOptions) (*graph.Runnable, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}

	workflow := graph.NewMessageGraph()

	if err := workflow.AddNode(AgentNode, "calls the model", callModel(model, tools, o)); err != nil {
		return nil, err
	}
	if err := workflow.AddNode(ToolsNode, "executes requested tool calls", NewToolNode(tools...).Invoke); err != nil {
		return nil, err
	}
	if err := workflow.SetEntryPoint(AgentNode); err != nil {
		return nil, err
	}
	workflow.AddConditionalEdges(AgentNode, ToolsCondition, map[string]string{
		RouteTools: ToolsNode,
		RouteEnd:   graph.END,
	})
	workflow.AddEdge(ToolsNode, AgentNode)

	compileOpts := []graph.CompileOption{
		graph.WithMaxSteps(o.maxSteps),
		graph.WithLogger(o.logger),
	}
	if o.checkpointer != nil {
		compileOpts = append(compileOpts, graph.WithCheckpointer(o.checkpointer))
	}
	return workflow.Compile(compileOpts...)
}

func callModel(model llms.Model, tools []tool.Tool, o *agentOptions) graph.NodeFunc {
	defs := tool.Definitions(tools)

	return func(ctx context.Context, state graph.State) (graph.State, error) {
		msgs := graph.MessagesFrom(state)
		if o.systemMessage != "" {
			msgs = append([]graph.Message{graph.SystemMessage(o.systemMessage)}, msgs...)
		}

		var callOpts []llms.CallOption
		if len(defs) > 0 {
			callOpts = append(callOpts, llms.WithTools(defs))
		}
		if fn := streamingFuncFromContext(ctx); fn != nil {
			callOpts = append(callOpts, llms.WithStreamingFunc(fn))
		}

		o.logger.Debug("calling model with %d message(s) and %d tool(s)", len(msgs), len(defs))
		resp, err := model.GenerateContent(ctx, graph.ToLLMMessages(msgs), callOpts...)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return nil, ErrNoChoices
		}

		reply := graph.MessageFromChoice(resp.Choices[0])
		o.logger.Debug("model replied with %d tool call(s)", len(reply.ToolCalls))
		return graph.State{graph.MessagesKey: []graph.Message{reply}}, nil
	}
}

type streamingFuncKey struct{}

type streamingFunc = func(ctx context.Context, chunk []byte) error

func withStreamingFunc(ctx context.Context, fn streamingFunc) context.Context {
	return context.WithValue(ctx, streamingFuncKey{}, fn)
}

func streamingFuncFromContext(ctx context.Context) streamingFunc {
	fn, _ := ctx.Value(streamingFuncKey{}).(streamingFunc)
	return fn
}
