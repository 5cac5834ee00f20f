package dify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/dify"
)

func newAgentServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat-messages", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "streaming", body["response_mode"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
}

func collect(t *testing.T, events <-chan ai.Event) (string, []ai.Event) {
	t.Helper()
	var (
		sb  strings.Builder
		all []ai.Event
	)
	for ev := range events {
		all = append(all, ev)
		if ev.Type == ai.EventTextDelta {
			sb.WriteString(ev.Text)
		}
	}
	return sb.String(), all
}

func TestChatStreamNotConfigured(t *testing.T) {
	client := dify.NewClient(dify.Config{}, nil)

	_, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	assert.ErrorIs(t, err, dify.ErrNotConfigured)
}

func TestChatStreamHappyPath(t *testing.T) {
	srv := newAgentServer(t, []string{
		`data: {"event":"message","answer":"Hello"}`,
		``,
		`data: {"event":"agent_message","answer":" world"}`,
		`data: {"event":"message_end"}`,
	})
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	events, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi", User: "u1"})
	require.NoError(t, err)

	text, all := collect(t, events)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, ai.EventDone, all[len(all)-1].Type)
}

func TestChatStreamSkipsMalformedFrames(t *testing.T) {
	srv := newAgentServer(t, []string{
		`data: {"event":"message","answer":"before"}`,
		`data: {not json at all`,
		`data: {"event":"message","answer":" after"}`,
		`data: [DONE]`,
	})
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	events, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	require.NoError(t, err)

	text, all := collect(t, events)
	assert.Equal(t, "before after", text)
	assert.Equal(t, ai.EventDone, all[len(all)-1].Type)
}

func TestChatStreamDropsUnknownEvents(t *testing.T) {
	srv := newAgentServer(t, []string{
		`data: {"event":"message_file","answer":"ignored"}`,
		`data: {"event":"message","answer":"kept"}`,
		`data: {"event":"message_end"}`,
	})
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	events, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	require.NoError(t, err)

	text, _ := collect(t, events)
	assert.Equal(t, "kept", text)
}

func TestChatStreamErrorEvent(t *testing.T) {
	srv := newAgentServer(t, []string{
		`data: {"event":"message","answer":"partial"}`,
		`data: {"event":"error","message":"quota exhausted"}`,
	})
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	events, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	require.NoError(t, err)

	_, all := collect(t, events)
	last := all[len(all)-1]
	require.Equal(t, ai.EventError, last.Type)
	assert.Contains(t, last.Err.Error(), "quota exhausted")
}

func TestChatStreamNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	_, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestChatStreamTruncatedStream(t *testing.T) {
	srv := newAgentServer(t, []string{
		`data: {"event":"message","answer":"tail"}`,
	})
	defer srv.Close()

	client := dify.NewClient(dify.Config{APIKey: "test-key", Endpoint: srv.URL}, srv.Client())
	events, err := client.ChatStream(context.Background(), dify.ChatRequest{Query: "hi"})
	require.NoError(t, err)

	text, all := collect(t, events)
	assert.Equal(t, "tail", text)
	assert.Equal(t, ai.EventDone, all[len(all)-1].Type)
}
