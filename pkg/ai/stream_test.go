package ai_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/openai"
)

type fakeRegistry struct {
	mu     sync.Mutex
	calls  []string
	result string
	defs   []goopenai.Tool
}

func (r *fakeRegistry) Definitions() []goopenai.Tool {
	return r.defs
}

func (r *fakeRegistry) Call(ctx context.Context, name string, arguments string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return r.result, nil
}

func (r *fakeRegistry) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func writeChunk(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func textChunk(content string) string {
	return fmt.Sprintf(`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

const toolChunk = `{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"getWeather","arguments":"{\"latitude\":1,\"longitude\":2}"}}]}}]}`

func newStreamServer(t *testing.T, handle func(w http.ResponseWriter, requestNo int)) (*httptest.Server, *int) {
	t.Helper()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "text/event-stream")
		handle(w, requests)
		writeChunk(w, "[DONE]")
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func collect(t *testing.T, events <-chan ai.Event) (string, []ai.Event) {
	t.Helper()
	var text strings.Builder
	var all []ai.Event
	deadline := time.After(time.Second * 10)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return text.String(), all
			}
			all = append(all, ev)
			if ev.Type == ai.EventTextDelta {
				text.WriteString(ev.Text)
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestHandleStreamTextAndDone(t *testing.T) {
	srv, _ := newStreamServer(t, func(w http.ResponseWriter, _ int) {
		writeChunk(w, textChunk("The quick brown "))
		writeChunk(w, textChunk("fox jumps"))
		writeChunk(w, `{"id":"1","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":3,"completion_tokens":5,"total_tokens":8}}`)
	})

	driver := openai.New("test-token", srv.URL+"/v1", "gpt-4o-mini", false)
	events := ai.HandleStream(context.Background(), driver, ai.StreamRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "hi"},
		},
	})

	text, all := collect(t, events)
	assert.Equal(t, "The quick brown fox jumps", text)

	require.NotEmpty(t, all)
	last := all[len(all)-1]
	assert.Equal(t, ai.EventDone, last.Type)
	require.NotNil(t, last.Usage)
	assert.Equal(t, 8, last.Usage.TotalTokens)
}

func TestHandleStreamToolThenAnswer(t *testing.T) {
	srv, requests := newStreamServer(t, func(w http.ResponseWriter, requestNo int) {
		if requestNo == 1 {
			writeChunk(w, toolChunk)
			return
		}
		writeChunk(w, textChunk("It is sunny."))
	})

	registry := &fakeRegistry{result: `{"temperature_2m":21.5}`}
	driver := openai.New("test-token", srv.URL+"/v1", "gpt-4o-mini", false)
	events := ai.HandleStream(context.Background(), driver, ai.StreamRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "weather?"},
		},
		Tools: registry,
	})

	text, all := collect(t, events)
	assert.Equal(t, "It is sunny.", text)
	assert.Equal(t, ai.EventDone, all[len(all)-1].Type)
	assert.Equal(t, []string{"getWeather"}, registry.calls)
	assert.Equal(t, 2, *requests)
}

func TestHandleStreamToolLoopCapped(t *testing.T) {
	// 模型每一轮都要求调用工具，验证轮数受 MaxSteps 约束
	srv, requests := newStreamServer(t, func(w http.ResponseWriter, _ int) {
		writeChunk(w, toolChunk)
	})

	registry := &fakeRegistry{result: `{}`}
	driver := openai.New("test-token", srv.URL+"/v1", "gpt-4o-mini", false)
	events := ai.HandleStream(context.Background(), driver, ai.StreamRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "loop"},
		},
		Tools:    registry,
		MaxSteps: 3,
	})

	_, all := collect(t, events)
	assert.Equal(t, ai.EventDone, all[len(all)-1].Type)
	assert.Equal(t, 3, *requests)
	assert.Equal(t, 3, registry.callCount())
}

func TestHandleStreamUpstreamAbortMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 40; i++ {
			writeChunk(w, textChunk("lorem ipsum "))
			time.Sleep(time.Millisecond * 10)
		}
		panic(http.ErrAbortHandler)
	}))
	t.Cleanup(srv.Close)

	driver := openai.New("test-token", srv.URL+"/v1", "gpt-4o-mini", false)
	events := ai.HandleStream(context.Background(), driver, ai.StreamRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "hi"},
		},
	})

	// 慢消费，连接中断时定时 flush 可能还有增量未发出，
	// channel 仍要以 EventError 收尾并正常关闭
	var last ai.Event
	deadline := time.After(time.Second * 10)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				assert.Equal(t, ai.EventError, last.Type)
				assert.Error(t, last.Err)
				return
			}
			last = ev
			time.Sleep(time.Millisecond * 30)
		case <-deadline:
			t.Fatal("stream did not terminate after upstream abort")
		}
	}
}

func TestHandleStreamReasoningModelSkipsTools(t *testing.T) {
	srv, requests := newStreamServer(t, func(w http.ResponseWriter, _ int) {
		writeChunk(w, textChunk("done thinking"))
	})

	registry := &fakeRegistry{result: `{}`, defs: []goopenai.Tool{{Type: goopenai.ToolTypeFunction}}}
	driver := openai.New("test-token", srv.URL+"/v1", "o1-mini", true)
	events := ai.HandleStream(context.Background(), driver, ai.StreamRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "think"},
		},
		Tools: registry,
	})

	text, _ := collect(t, events)
	assert.Equal(t, "done thinking", text)
	assert.Equal(t, 1, *requests)
	assert.Zero(t, registry.callCount())
}
