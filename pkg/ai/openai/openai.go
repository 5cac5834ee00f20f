package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const NAME = "openai"

// Driver 默认模型驱动，兼容所有 openai 协议的服务端
type Driver struct {
	client    *openai.Client
	chatModel string
	reasoning bool
}

func New(token, endpoint, chatModel string, reasoning bool) *Driver {
	cfg := openai.DefaultConfig(token)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	return &Driver{
		client:    openai.NewClientWithConfig(cfg),
		chatModel: chatModel,
		reasoning: reasoning,
	}
}

func (s *Driver) ChatModel() string {
	return s.chatModel
}

func (s *Driver) IsReasoningModel() bool {
	return s.reasoning
}

func (s *Driver) QueryStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error) {
	if req.Model == "" {
		req.Model = s.chatModel
	}
	resp, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion stream error: %w", err)
	}

	slog.Debug("QueryStream", slog.String("driver", NAME), slog.String("model", req.Model))
	return resp, nil
}

func (s *Driver) Query(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = s.chatModel
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, fmt.Errorf("completion error: %w", err)
	}
	return resp, nil
}

// GenerateTitle 为新会话生成标题的一次性短请求
func GenerateTitle(ctx context.Context, driver interface {
	Query(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}, prompt, firstMessage string) (string, error) {
	resp, err := driver.Query(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: firstMessage},
		},
		Temperature: 0.3,
		MaxTokens:   60,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty title response")
	}

	title := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'`)
	if len(title) > 80 {
		title = title[:80]
	}
	return title, nil
}
