package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type MessageRole string

const (
	MESSAGE_ROLE_USER      MessageRole = "user"
	MESSAGE_ROLE_ASSISTANT MessageRole = "assistant"
)

type MessagePartType string

const (
	MESSAGE_PART_TEXT   MessagePartType = "text"
	MESSAGE_PART_NOTICE MessagePartType = "notice"
)

// MessagePart 消息内容块。assistant 消息可能由多个块组成，
// 例如外部 agent 的部分输出、降级提示以及默认模型的输出。
type MessagePart struct {
	Type MessagePartType `json:"type"`
	Text string          `json:"text"`
}

type MessageParts []MessagePart

func (p MessageParts) PlainText() string {
	var sb strings.Builder
	for _, v := range p {
		if v.Type != MESSAGE_PART_TEXT {
			continue
		}
		sb.WriteString(v.Text)
	}
	return sb.String()
}

func (p MessageParts) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	return string(raw), err
}

func (p *MessageParts) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return json.Unmarshal(src, p)
	case string:
		return json.Unmarshal([]byte(src), p)
	case nil:
		*p = nil
		return nil
	}
	return fmt.Errorf("unsupported scan type for MessageParts: %T", src)
}

type MessageAttachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

type MessageAttachments []MessageAttachment

func (a MessageAttachments) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	return string(raw), err
}

func (a *MessageAttachments) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return json.Unmarshal(src, a)
	case string:
		return json.Unmarshal([]byte(src), a)
	case nil:
		*a = nil
		return nil
	}
	return fmt.Errorf("unsupported scan type for MessageAttachments: %T", src)
}

// Message 对话消息，写入后不可修改，仅可删除。
type Message struct {
	ID          string             `json:"id" db:"id"`
	ChatID      string             `json:"chat_id" db:"chat_id"`
	Role        MessageRole        `json:"role" db:"role"`
	Parts       MessageParts       `json:"parts" db:"parts"`
	Attachments MessageAttachments `json:"attachments" db:"attachments"`
	CreatedAt   int64              `json:"created_at" db:"created_at"`
}

type CreateMessageArgs struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	Attachments MessageAttachments `json:"attachments"`
}
