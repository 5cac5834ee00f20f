package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrameLineProtocol(t *testing.T) {
	line := EncodeFrame(NewTextDelta("msg-1", "hello"))

	require.True(t, strings.HasPrefix(line, "data: "))
	require.True(t, strings.HasSuffix(line, "\n\n"))

	var f Frame
	payload := strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(payload), &f))
	assert.Equal(t, FrameTextDelta, f.Type)
	assert.Equal(t, "msg-1", f.MessageID)
	assert.Equal(t, "hello", f.Delta)
}

func TestEncodeFrameOmitsEmptyFields(t *testing.T) {
	line := EncodeFrame(NewNotice("agent down"))
	assert.NotContains(t, line, "message_id")
	assert.Contains(t, line, `"level":"error"`)
}

func TestEncodeDone(t *testing.T) {
	assert.Equal(t, "data: [DONE]\n\n", EncodeDone())
}
