package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/jiujiechenfeng/langgraph-source/graph"
	"github.com/jiujiechenfeng/langgraph-source/store"
	"github.com/jiujiechenfeng/langgraph-source/store/memory"
)

// ChatAgent is a multi-turn conversation with a model. Each turn sends only the
// new human message; earlier turns are restored from the checkpointer under the
// agent's thread id.
type ChatAgent struct {
	runnable *graph.Runnable
	threadID string
}

// NewChatAgent creates a ChatAgent. Without WithCheckpointer the history is
// kept in memory, and without WithThreadID a random thread id is used.
func NewChatAgent(model llms.Model, opts ...AgentOption) (*ChatAgent, error) {
	o := newAgentOptions(opts)
	if o.checkpointer == nil {
		o.checkpointer = memory.NewMemoryCheckpointStore()
	}
	if o.threadID == "" {
		o.threadID = uuid.NewString()
	}

	runnable, err := createToolAgent(model, o.tools, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat agent: %w", err)
	}
	return &ChatAgent{runnable: runnable, threadID: o.threadID}, nil
}

// ThreadID returns the conversation id.
func (c *ChatAgent) ThreadID() string {
	return c.threadID
}

// Runnable returns the compiled agent graph.
func (c *ChatAgent) Runnable() *graph.Runnable {
	return c.runnable
}

// Chat sends one human message and returns the model's final reply.
func (c *ChatAgent) Chat(ctx context.Context, text string) (string, error) {
	return c.send(ctx, text)
}

// Stream is Chat with incremental delivery: onChunk receives the reply
// fragments as the model produces them. Their concatenation equals the
// returned reply when the turn needs no tool call.
func (c *ChatAgent) Stream(ctx context.Context, text string, onChunk func(chunk string)) (string, error) {
	ctx = withStreamingFunc(ctx, func(_ context.Context, chunk []byte) error {
		onChunk(string(chunk))
		return nil
	})
	return c.send(ctx, text)
}

func (c *ChatAgent) send(ctx context.Context, text string) (string, error) {
	final, err := c.runnable.InvokeWithConfig(ctx, graph.State{
		graph.MessagesKey: []graph.Message{graph.HumanMessage(text)},
	}, &graph.Config{ThreadID: c.threadID})
	if err != nil {
		return "", err
	}

	reply, ok := graph.LastAIMessage(graph.MessagesFrom(final))
	if !ok {
		return "", errors.New("no reply in conversation")
	}
	return reply.Content, nil
}

// History returns the conversation so far. A fresh agent has no history.
func (c *ChatAgent) History(ctx context.Context) ([]graph.Message, error) {
	state, err := c.runnable.GetState(ctx, c.threadID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return graph.MessagesFrom(state), nil
}

// Reset forgets the conversation.
func (c *ChatAgent) Reset(ctx context.Context) error {
	return c.runnable.ClearState(ctx, c.threadID)
}
