package ai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sidekick-ai/sidekick-ai/pkg/safe"
)

// DefaultMaxSteps 单次请求允许的最大工具调用轮数
const DefaultMaxSteps = 5

// ToolRegistry 工具注册表。Call 返回的字符串会作为 tool 消息回填给模型。
type ToolRegistry interface {
	Definitions() []openai.Tool
	Call(ctx context.Context, name string, arguments string) (string, error)
}

type StreamRequest struct {
	Messages []openai.ChatCompletionMessage
	Tools    ToolRegistry
	MaxSteps int
}

// HandleStream 消费默认模型的流式输出：按词边界做平滑切块，
// 处理有上限的多轮工具调用，事件写入返回的 channel，结束后关闭。
func HandleStream(ctx context.Context, driver ChatDriver, req StreamRequest) <-chan Event {
	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	var defs []openai.Tool
	if req.Tools != nil && !driver.IsReasoningModel() {
		defs = req.Tools.Definitions()
	}

	out := make(chan Event, 16)
	messages := req.Messages

	go safe.Run(func() {
		defer close(out)

		usage := &openai.Usage{}
		for step := 0; step < maxSteps; step++ {
			// 最后一轮不再下发工具，强制模型收尾
			stepTools := defs
			if step == maxSteps-1 {
				stepTools = nil
			}

			toolCalls, err := streamOnce(ctx, driver, messages, stepTools, out, usage)
			if err != nil {
				out <- Event{Type: EventError, Err: err}
				return
			}

			if len(toolCalls) == 0 {
				out <- Event{Type: EventDone, Usage: usage}
				return
			}

			messages = append(messages, openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				ToolCalls: toolCalls,
			})
			for _, tc := range toolCalls {
				result, callErr := req.Tools.Call(ctx, tc.Function.Name, tc.Function.Arguments)
				if callErr != nil {
					result = fmt.Sprintf(`{"error":%q}`, callErr.Error())
				}
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					ToolCallID: tc.ID,
					Content:    result,
				})
			}
		}

		out <- Event{Type: EventDone, Usage: usage}
	})

	return out
}

func streamOnce(ctx context.Context, driver ChatDriver, messages []openai.ChatCompletionMessage, tools []openai.Tool, out chan<- Event, usage *openai.Usage) ([]openai.ToolCall, error) {
	req := openai.ChatCompletionRequest{
		Model:    driver.ChatModel(),
		Stream:   true,
		Messages: messages,
		Tools:    tools,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
	}

	resp, err := driver.QueryStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion error: %w", err)
	}
	defer resp.Close()

	flushCtx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(time.Millisecond * 100)
	flushDone := make(chan struct{})
	defer func() {
		ticker.Stop()
		cancel()
		// 等定时 flush 退出，避免 out 关闭后仍有待发送的事件
		<-flushDone
	}()

	var (
		mu        sync.Mutex
		strs      strings.Builder
		toolCalls []openai.ToolCall
	)

	// flushWords 只输出到最后一个词边界，剩余部分留给下次
	flushWords := func(all bool) {
		mu.Lock()
		defer mu.Unlock()
		if strs.Len() == 0 {
			return
		}
		buffered := strs.String()
		cut := len(buffered)
		if !all {
			idx := strings.LastIndexAny(buffered, " \t\n")
			if idx < 0 {
				return
			}
			cut = idx + 1
		}
		out <- Event{Type: EventTextDelta, Text: buffered[:cut]}
		strs.Reset()
		strs.WriteString(buffered[cut:])
	}

	go safe.Run(func() {
		defer close(flushDone)
		for {
			select {
			case <-flushCtx.Done():
				return
			case <-ticker.C:
				flushWords(false)
			}
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msg, err := resp.Recv()
		if err == io.EOF {
			cancel()
			flushWords(true)
			return toolCalls, nil
		}
		if err != nil {
			return nil, err
		}

		if msg.Usage != nil {
			usage.PromptTokens += msg.Usage.PromptTokens
			usage.CompletionTokens += msg.Usage.CompletionTokens
			usage.TotalTokens += msg.Usage.TotalTokens
		}

		for _, v := range msg.Choices {
			for _, toolCall := range v.Delta.ToolCalls {
				if toolCall.Index == nil || *toolCall.Index >= len(toolCalls) {
					toolCalls = append(toolCalls, toolCall)
					continue
				}
				idx := *toolCall.Index
				toolCalls[idx].Function.Name += toolCall.Function.Name
				toolCalls[idx].Function.Arguments += toolCall.Function.Arguments
			}

			if v.Delta.Content != "" {
				mu.Lock()
				strs.WriteString(v.Delta.Content)
				mu.Unlock()
			}
		}
	}
}
