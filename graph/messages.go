package graph

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// MessagesKey is the conventional state field holding the conversation.
const MessagesKey = "messages"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// ToolCall is a model-issued request to invoke a named tool.
// ID correlates the request with the tool message carrying its result.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Message is one entry of a conversation.
// Tool messages carry ToolCallID, the ID of the request they answer.
type Message struct {
	ID         string     `json:"id,omitempty"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// MessageID implements Identifiable.
func (m Message) MessageID() string {
	return m.ID
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// HumanMessage creates a user message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AIMessage creates a model message, optionally requesting tool calls.
func AIMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: calls}
}

// ToolMessage creates the result message for the tool call identified by callID.
func ToolMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, Name: name, ToolCallID: callID}
}

// AddMessages is the reducer for message lists. Incoming messages are appended,
// except that a message whose ID matches an existing one replaces it in place.
// Messages without an ID are assigned a fresh one.
func AddMessages(current, new any) (any, error) {
	existing, err := toMessages(current)
	if err != nil {
		return nil, fmt.Errorf("current value: %w", err)
	}
	updates, err := toMessages(new)
	if err != nil {
		return nil, fmt.Errorf("new value: %w", err)
	}

	result := make([]Message, len(existing), len(existing)+len(updates))
	copy(result, existing)

	index := make(map[string]int, len(result))
	for i, m := range result {
		if m.ID != "" {
			index[m.ID] = i
		}
	}

	for _, m := range updates {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if pos, ok := index[m.ID]; ok {
			result[pos] = m
			continue
		}
		index[m.ID] = len(result)
		result = append(result, m)
	}
	return result, nil
}

func toMessages(v any) ([]Message, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []Message:
		return t, nil
	case Message:
		return []Message{t}, nil
	case []any:
		out := make([]Message, 0, len(t))
		for _, item := range t {
			m, ok := item.(Message)
			if !ok {
				return nil, fmt.Errorf("expected Message, got %T", item)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected []Message, got %T", v)
	}
}

// MessagesFrom returns the conversation stored under MessagesKey.
func MessagesFrom(state State) []Message {
	msgs, _ := GetAs[[]Message](state, MessagesKey)
	return msgs
}

// LastAIMessage scans from the most recent message backward for the latest AI message.
func LastAIMessage(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAI {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// ToLLMMessages converts a conversation to langchaingo message content.
func ToLLMMessages(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.Name,
						Content:    m.Content,
					},
				},
			})
		case RoleAI:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Args)
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, mc)
		case RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		default:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}
	return out
}

// MessageFromChoice converts a model response choice into an AI message.
// Tool call arguments that are not a JSON object are kept under the "input" key.
func MessageFromChoice(choice *llms.ContentChoice) Message {
	msg := Message{ID: uuid.NewString(), Role: RoleAI}
	if choice == nil {
		return msg
	}
	msg.Content = choice.Content
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		call := ToolCall{ID: tc.ID, Name: tc.FunctionCall.Name}
		if tc.FunctionCall.Arguments != "" {
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				args = map[string]any{"input": tc.FunctionCall.Arguments}
			}
			call.Args = args
		}
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	return msg
}
