package prebuilt

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// scriptedModel replays replies in order and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []*llms.ContentChoice
	fallback *llms.ContentChoice
	err      error

	calls   [][]llms.MessageContent
	options []llms.CallOptions
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.calls = append(m.calls, messages)
	m.options = append(m.options, opts)

	if m.err != nil {
		return nil, m.err
	}

	choice := m.fallback
	if n := len(m.calls) - 1; n < len(m.replies) {
		choice = m.replies[n]
	}
	if choice == nil {
		choice = &llms.ContentChoice{Content: "default response"}
	}

	if opts.StreamingFunc != nil {
		for _, word := range strings.SplitAfter(choice.Content, " ") {
			if word == "" {
				continue
			}
			if err := opts.StreamingFunc(ctx, []byte(word)); err != nil {
				return nil, err
			}
		}
	}

	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func textReply(content string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: content}
}

func toolCallReply(id, name, args string) *llms.ContentChoice {
	return &llms.ContentChoice{
		ToolCalls: []llms.ToolCall{{
			ID:   id,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}
