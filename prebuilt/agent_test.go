package prebuilt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/jiujiechenfeng/langgraph-source/graph"
	"github.com/jiujiechenfeng/langgraph-source/store/memory"
	"github.com/jiujiechenfeng/langgraph-source/tool"
)

func weatherQuestion() graph.State {
	return graph.State{
		graph.MessagesKey: []graph.Message{graph.HumanMessage("what's the weather in Beijing?")},
	}
}

func TestCreateToolAgent_ToolLoop(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		toolCallReply("call_1", "get_weather", `{"city":"Beijing"}`),
		textReply("It is 26 degrees in Beijing."),
	}}

	agent, err := CreateToolAgent(model, []tool.Tool{tool.Weather(), tool.Multiply()})
	require.NoError(t, err)

	final, err := agent.Invoke(context.Background(), weatherQuestion())
	require.NoError(t, err)

	msgs := graph.MessagesFrom(final)
	require.Len(t, msgs, 4)
	assert.Equal(t, graph.RoleHuman, msgs[0].Role)
	assert.Equal(t, graph.RoleAI, msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, map[string]any{"city": "Beijing"}, msgs[1].ToolCalls[0].Args)
	assert.Equal(t, graph.RoleTool, msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
	assert.Equal(t, "26", msgs[2].Content)
	assert.Equal(t, "It is 26 degrees in Beijing.", msgs[3].Content)

	require.Equal(t, 2, model.callCount())
	require.Len(t, model.options[0].Tools, 2)
	assert.Equal(t, "get_weather", model.options[0].Tools[0].Function.Name)
	assert.Equal(t, "multiply", model.options[0].Tools[1].Function.Name)

	second := model.calls[1]
	require.Len(t, second, 3)
	assert.Equal(t, llms.ChatMessageTypeTool, second[2].Role)
	resp, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", resp.ToolCallID)
	assert.Equal(t, "26", resp.Content)
}

func TestCreateToolAgent_NoTools(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{textReply("hello")}}

	agent, err := CreateToolAgent(model, nil)
	require.NoError(t, err)

	final, err := agent.Invoke(context.Background(), graph.State{
		graph.MessagesKey: []graph.Message{graph.HumanMessage("hi")},
	})
	require.NoError(t, err)

	msgs := graph.MessagesFrom(final)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Empty(t, model.options[0].Tools)
}

func TestCreateToolAgent_SystemMessage(t *testing.T) {
	model := &scriptedModel{}

	agent, err := CreateToolAgent(model, nil, WithSystemMessage("answer briefly"))
	require.NoError(t, err)

	final, err := agent.Invoke(context.Background(), weatherQuestion())
	require.NoError(t, err)

	sent := model.calls[0]
	require.Len(t, sent, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, sent[0].Role)
	assert.Equal(t, llms.TextPart("answer briefly"), sent[0].Parts[0])

	msgs := graph.MessagesFrom(final)
	require.Len(t, msgs, 2)
	assert.Equal(t, graph.RoleHuman, msgs[0].Role)
}

func TestCreateToolAgent_StepLimit(t *testing.T) {
	model := &scriptedModel{fallback: toolCallReply("", "get_weather", `{"city":"Beijing"}`)}

	agent, err := CreateToolAgent(model, []tool.Tool{tool.Weather()}, WithMaxSteps(4))
	require.NoError(t, err)

	_, err = agent.Invoke(context.Background(), weatherQuestion())
	require.Error(t, err)

	var limitErr *graph.StepLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 4, limitErr.Limit)
	assert.Equal(t, AgentNode, limitErr.Node)
	assert.Equal(t, 2, model.callCount())
}

func TestCreateToolAgent_ModelFailure(t *testing.T) {
	modelErr := errors.New("connection refused")
	model := &scriptedModel{err: modelErr}

	agent, err := CreateToolAgent(model, nil)
	require.NoError(t, err)

	_, err = agent.Invoke(context.Background(), weatherQuestion())
	require.Error(t, err)

	var nodeErr *graph.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, AgentNode, nodeErr.Node)
	assert.ErrorIs(t, err, modelErr)
}

type emptyModel struct{}

func (emptyModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func (emptyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", nil
}

func TestCreateToolAgent_NoChoices(t *testing.T) {
	agent, err := CreateToolAgent(emptyModel{}, nil)
	require.NoError(t, err)

	_, err = agent.Invoke(context.Background(), weatherQuestion())
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestCreateToolAgent_NilModel(t *testing.T) {
	_, err := CreateToolAgent(nil, nil)
	assert.Error(t, err)
}

func TestCreateToolAgent_Structure(t *testing.T) {
	agent, err := CreateToolAgent(&scriptedModel{}, nil)
	require.NoError(t, err)

	s := agent.Structure()
	assert.Equal(t, AgentNode, s.EntryPoint)
	assert.Equal(t, []string{AgentNode, ToolsNode}, s.Nodes)
	assert.Equal(t, []graph.Edge{{From: ToolsNode, To: AgentNode}}, s.Edges)
	assert.Equal(t, map[string]string{RouteTools: ToolsNode, RouteEnd: graph.END}, s.Conditional[AgentNode])
}

func TestCreateToolAgent_Checkpointer(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{textReply("first"), textReply("second")}}
	cp := memory.NewMemoryCheckpointStore()

	agent, err := CreateToolAgent(model, nil, WithCheckpointer(cp))
	require.NoError(t, err)

	cfg := &graph.Config{ThreadID: "t1"}
	_, err = agent.InvokeWithConfig(context.Background(), graph.State{
		graph.MessagesKey: []graph.Message{graph.HumanMessage("one")},
	}, cfg)
	require.NoError(t, err)

	final, err := agent.InvokeWithConfig(context.Background(), graph.State{
		graph.MessagesKey: []graph.Message{graph.HumanMessage("two")},
	}, cfg)
	require.NoError(t, err)

	msgs := graph.MessagesFrom(final)
	require.Len(t, msgs, 4)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "two", msgs[2].Content)
	assert.Equal(t, "second", msgs[3].Content)
	assert.Len(t, model.calls[1], 3)
}
