package ai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// EventType 流式输出事件类型
type EventType int

const (
	EventTextDelta EventType = iota + 1
	EventDone
	EventError
)

// Event 两类 provider（默认模型与外部 agent）统一的流式输出单元。
// EventError 之后不会再有其他事件。
type Event struct {
	Type  EventType
	Text  string
	Usage *openai.Usage
	Err   error
}

// ChatDriver 默认模型驱动的最小能力集
type ChatDriver interface {
	QueryStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
	Query(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ChatModel() string
	IsReasoningModel() bool
}
