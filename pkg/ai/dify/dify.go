package dify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/safe"
)

const NAME = "dify"

// ErrNotConfigured 缺少 api key 或 endpoint 时返回，调用方据此降级到默认模型
var ErrNotConfigured = errors.New("dify agent is not configured")

type Config struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

func (c Config) Available() bool {
	return c.APIKey != "" && c.Endpoint != ""
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

type ChatRequest struct {
	Query          string
	ConversationID string
	User           string
	Inputs         map[string]any
}

type chatRequestBody struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id"`
	User           string         `json:"user"`
}

// eventFrame 上游事件流信封，event 为判别字段。
// 未识别的 event 丢弃并记录，不中断整个流。
type eventFrame struct {
	Event   string `json:"event"`
	Answer  string `json:"answer"`
	Message string `json:"message"`
}

const (
	eventMessage      = "message"
	eventAgentMessage = "agent_message"
	eventMessageEnd   = "message_end"
	eventError        = "error"

	doneSentinel = "[DONE]"
	dataPrefix   = "data: "
)

// ChatStream 调用外部 agent 的流式接口。上游为逐行
// `data: <json>` 帧，单个坏帧只跳过，error 事件与传输错误通过
// EventError 上抛，由调用方决定是否降级。
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (<-chan ai.Event, error) {
	if !c.cfg.Available() {
		return nil, ErrNotConfigured
	}

	if req.Inputs == nil {
		req.Inputs = map[string]any{}
	}
	body, err := json.Marshal(chatRequestBody{
		Inputs:         req.Inputs,
		Query:          req.Query,
		ResponseMode:   "streaming",
		ConversationID: req.ConversationID,
		User:           req.User,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent request, %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.cfg.Endpoint, "/")+"/chat-messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request, %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agent request failed, %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("agent responded with status %d: %s", resp.StatusCode, string(raw))
	}

	out := make(chan ai.Event, 16)
	go safe.Run(func() {
		defer resp.Body.Close()
		defer close(out)
		c.readEvents(ctx, resp.Body, out)
	})

	return out, nil
}

func (c *Client) readEvents(ctx context.Context, body io.Reader, out chan<- ai.Event) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	started := time.Now()
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			out <- ai.Event{Type: ai.EventError, Err: ctx.Err()}
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := strings.TrimPrefix(line, dataPrefix)
		if payload == doneSentinel {
			out <- ai.Event{Type: ai.EventDone}
			return
		}

		var frame eventFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			slog.Warn("skip malformed agent frame", slog.String("driver", NAME), slog.String("error", err.Error()))
			continue
		}

		switch frame.Event {
		case eventMessage, eventAgentMessage:
			if frame.Answer != "" {
				out <- ai.Event{Type: ai.EventTextDelta, Text: frame.Answer}
			}
		case eventMessageEnd:
			slog.Debug("agent stream finished", slog.String("driver", NAME), slog.Duration("elapsed", time.Since(started)))
			out <- ai.Event{Type: ai.EventDone}
			return
		case eventError:
			out <- ai.Event{Type: ai.EventError, Err: fmt.Errorf("agent error: %s", frame.Message)}
			return
		default:
			slog.Debug("drop unrecognized agent frame", slog.String("driver", NAME), slog.String("event", frame.Event))
		}
	}

	if err := scanner.Err(); err != nil {
		out <- ai.Event{Type: ai.EventError, Err: fmt.Errorf("agent stream interrupted, %w", err)}
		return
	}

	// 上游未发终止帧直接断开，按正常结束处理
	out <- ai.Event{Type: ai.EventDone}
}
