package prebuilt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/jiujiechenfeng/langgraph-source/graph"
	"github.com/jiujiechenfeng/langgraph-source/store/memory"
	"github.com/jiujiechenfeng/langgraph-source/tool"
)

func TestChatAgent(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		textReply("Hello! I am a bot."),
		textReply("I remember you said hi."),
	}}

	agent, err := NewChatAgent(model)
	require.NoError(t, err)
	ctx := context.Background()

	threadID := agent.ThreadID()
	assert.NotEmpty(t, threadID)

	history, err := agent.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	reply, err := agent.Chat(ctx, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! I am a bot.", reply)

	reply, err = agent.Chat(ctx, "Do you remember me?")
	require.NoError(t, err)
	assert.Equal(t, "I remember you said hi.", reply)
	assert.Equal(t, threadID, agent.ThreadID())

	// The second call carries the first turn restored from the checkpoint.
	require.Len(t, model.calls[1], 3)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.calls[1][0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.calls[1][1].Role)

	history, err = agent.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "Hi", history[0].Content)
	assert.Equal(t, "Do you remember me?", history[2].Content)
}

func TestChatAgent_Stream(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{textReply("Streaming works one word at a time.")}}

	agent, err := NewChatAgent(model)
	require.NoError(t, err)

	var chunks []string
	reply, err := agent.Stream(context.Background(), "stream please", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)

	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, reply, strings.Join(chunks, ""))
	assert.Equal(t, "Streaming works one word at a time.", reply)
}

func TestChatAgent_Reset(t *testing.T) {
	model := &scriptedModel{}

	agent, err := NewChatAgent(model)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = agent.Chat(ctx, "first")
	require.NoError(t, err)
	require.NoError(t, agent.Reset(ctx))

	history, err := agent.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = agent.Chat(ctx, "again")
	require.NoError(t, err)
	assert.Len(t, model.calls[1], 1)
}

func TestChatAgent_SharedThread(t *testing.T) {
	cp := memory.NewMemoryCheckpointStore()
	ctx := context.Background()

	first, err := NewChatAgent(&scriptedModel{}, WithCheckpointer(cp), WithThreadID("user-42"))
	require.NoError(t, err)
	_, err = first.Chat(ctx, "remember the number 7")
	require.NoError(t, err)

	model := &scriptedModel{}
	second, err := NewChatAgent(model, WithCheckpointer(cp), WithThreadID("user-42"))
	require.NoError(t, err)
	_, err = second.Chat(ctx, "which number?")
	require.NoError(t, err)

	require.Len(t, model.calls[0], 3)
	assert.Equal(t, llms.TextPart("remember the number 7"), model.calls[0][0].Parts[0])
}

func TestChatAgent_WithTools(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		toolCallReply("call_1", "multiply", `{"a": 6, "b": 7}`),
		textReply("6 times 7 is 42."),
	}}

	agent, err := NewChatAgent(model, WithTools(tool.Multiply()))
	require.NoError(t, err)

	reply, err := agent.Chat(context.Background(), "what is 6*7?")
	require.NoError(t, err)
	assert.Equal(t, "6 times 7 is 42.", reply)

	history, err := agent.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, graph.RoleTool, history[2].Role)
	assert.Equal(t, "42", history[2].Content)
}

func TestChatAgent_ModelFailure(t *testing.T) {
	modelErr := errors.New("rate limited")
	agent, err := NewChatAgent(&scriptedModel{err: modelErr})
	require.NoError(t, err)

	_, err = agent.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, modelErr)

	history, err := agent.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}
