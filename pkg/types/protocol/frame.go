package protocol

import (
	"encoding/json"
	"fmt"
)

// 客户端数据流协议：每帧一行 `data: <json>`，JSON 为带 type 判别字段的
// 信封，流以 `data: [DONE]` 结束。客户端需按消息 ID 幂等应用
// append-message 帧（at-least-once 投递）。
type FrameType string

const (
	FrameMessageStart  FrameType = "message-start"
	FrameTextDelta     FrameType = "text-delta"
	FrameNotice        FrameType = "notice"
	FrameAppendMessage FrameType = "append-message"
	FrameFinish        FrameType = "finish"
	FrameError         FrameType = "error"
)

const DoneSentinel = "[DONE]"

type Frame struct {
	Type      FrameType       `json:"type"`
	MessageID string          `json:"message_id,omitempty"`
	ChatID    string          `json:"chat_id,omitempty"`
	Delta     string          `json:"delta,omitempty"`
	Level     string          `json:"level,omitempty"`
	Text      string          `json:"text,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
}

// EncodeFrame 按行协议编码单帧
func EncodeFrame(f Frame) string {
	raw, _ := json.Marshal(f)
	return fmt.Sprintf("data: %s\n\n", raw)
}

func EncodeDone() string {
	return fmt.Sprintf("data: %s\n\n", DoneSentinel)
}

func NewTextDelta(messageID, delta string) Frame {
	return Frame{Type: FrameTextDelta, MessageID: messageID, Delta: delta}
}

func NewNotice(text string) Frame {
	return Frame{Type: FrameNotice, Level: "error", Text: text}
}
