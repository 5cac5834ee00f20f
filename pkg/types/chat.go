package types

type ChatVisibility string

const (
	CHAT_VISIBILITY_PRIVATE ChatVisibility = "private"
	CHAT_VISIBILITY_PUBLIC  ChatVisibility = "public"
)

func (v ChatVisibility) Valid() bool {
	return v == CHAT_VISIBILITY_PRIVATE || v == CHAT_VISIBILITY_PUBLIC
}

// Chat 一次对话。UserID 即所有者，创建后不可变更。
type Chat struct {
	ID          string         `json:"id" db:"id"`
	UserID      string         `json:"user_id" db:"user_id"`
	CompanionID string         `json:"companion_id" db:"companion_id"`
	Title       string         `json:"title" db:"title"`
	Visibility  ChatVisibility `json:"visibility" db:"visibility"`
	CreatedAt   int64          `json:"created_at" db:"created_at"`
}
