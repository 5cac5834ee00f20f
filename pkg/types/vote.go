package types

// Vote 消息投票，(chat_id, message_id) 唯一，重复投票覆盖。
type Vote struct {
	ChatID    string `json:"chat_id" db:"chat_id"`
	MessageID string `json:"message_id" db:"message_id"`
	IsUpvoted bool   `json:"is_upvoted" db:"is_upvoted"`
}
