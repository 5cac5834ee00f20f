package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	"github.com/sidekick-ai/sidekick-ai/app/core/srv"
	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/dify"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

// newStreamCore 把 AI 通路指向本地伪造的上游，其余配置照常加载
func newStreamCore(t *testing.T, upstreamURL string) *core.Core {
	t.Helper()
	path := os.Getenv("SIDEKICK_TEST_CONFIG_PATH")
	if path == "" {
		t.Skip("SIDEKICK_TEST_CONFIG_PATH not set")
	}

	cfg := core.MustLoadBaseConfig(path)
	cfg.AI.OpenAI = srv.OpenAIConfig{
		Token:     "test-token",
		Endpoint:  upstreamURL + "/v1",
		ChatModel: "gpt-4o-mini",
	}
	cfg.AI.Agent = dify.Config{}
	return core.MustSetupCore(cfg)
}

func newUpstream(t *testing.T, handle func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		handle(w)
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func writeUpstreamChunk(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func upstreamTextChunk(content string) string {
	return fmt.Sprintf(`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

// frameSink 把线协议逐帧解码，便于断言帧序列
type frameSink struct {
	frames []protocol.Frame
	done   bool
}

func (s *frameSink) write(payload string) error {
	line := strings.TrimSuffix(strings.TrimPrefix(payload, "data: "), "\n\n")
	if line == protocol.DoneSentinel {
		s.done = true
		return nil
	}
	var f protocol.Frame
	if err := json.Unmarshal([]byte(line), &f); err != nil {
		return err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *frameSink) typesSeen() []protocol.FrameType {
	seen := make([]protocol.FrameType, 0, len(s.frames))
	for _, f := range s.frames {
		seen = append(seen, f.Type)
	}
	return seen
}

func Test_StreamAgentFallbackNotice(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter) {
		writeUpstreamChunk(w, upstreamTextChunk("Hello from "))
		writeUpstreamChunk(w, upstreamTextChunk("the default model."))
		writeUpstreamChunk(w, "[DONE]")
	})
	appCore := newStreamCore(t, upstream.URL)
	ctx := context.Background()

	userID := utils.GenRandomID()
	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     userID,
		Title:      "fallback",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	sink := &frameSink{}
	logic := v1.NewChatLogic(NewUserContext(userID, "regular"), appCore)
	err := logic.Stream(v1.ChatRequest{
		ChatID:  chat.ID,
		Message: types.CreateMessageArgs{Text: "hi"},
		AgentID: "agent-123",
	}, sink.write)
	assert.NoError(t, err)

	// agent 未配置密钥：同一轮内降级，notice 帧在增量之前下发
	assert.True(t, sink.done)
	seen := sink.typesSeen()
	assert.Contains(t, seen, protocol.FrameNotice)
	assert.Contains(t, seen, protocol.FrameTextDelta)
	assert.Equal(t, protocol.FrameFinish, seen[len(seen)-1])

	var text strings.Builder
	for _, f := range sink.frames {
		if f.Type == protocol.FrameTextDelta {
			text.WriteString(f.Delta)
		}
	}
	assert.Equal(t, "Hello from the default model.", text.String())

	// 落库恰好一条 user 一条 assistant，降级痕迹保留在 notice part 中
	messages, err := appCore.Store().ChatMessageStore().ListChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, messages, 2)

	var assistants []types.Message
	for _, m := range messages {
		if m.Role == types.MESSAGE_ROLE_ASSISTANT {
			assistants = append(assistants, m)
		}
	}
	require.Len(t, assistants, 1)

	partTypes := make([]types.MessagePartType, 0, len(assistants[0].Parts))
	for _, p := range assistants[0].Parts {
		partTypes = append(partTypes, p.Type)
	}
	assert.Contains(t, partTypes, types.MESSAGE_PART_NOTICE)
	assert.Contains(t, partTypes, types.MESSAGE_PART_TEXT)
}

func Test_StreamUserMessageSurvivesFailure(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	appCore := newStreamCore(t, upstream.URL)
	ctx := context.Background()

	userID := utils.GenRandomID()
	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     userID,
		Title:      "failure",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	sink := &frameSink{}
	logic := v1.NewChatLogic(NewUserContext(userID, "regular"), appCore)
	err := logic.Stream(v1.ChatRequest{
		ChatID:  chat.ID,
		Message: types.CreateMessageArgs{Text: "hi"},
	}, sink.write)
	assert.NoError(t, err)

	// 生成失败以 error 帧收尾，流正常结束
	assert.True(t, sink.done)
	seen := sink.typesSeen()
	require.NotEmpty(t, seen)
	assert.Equal(t, protocol.FrameError, seen[len(seen)-1])

	// 用户消息保留，不产生 assistant 行
	messages, err := appCore.Store().ChatMessageStore().ListChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, messages, 1)
	assert.Equal(t, types.MESSAGE_ROLE_USER, messages[0].Role)
}
