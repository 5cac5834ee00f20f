package types

// ChatStream 流恢复账本记录，仅追加。一个 chat 最新的一条记录
// 即断线重连时可恢复的目标流。
type ChatStream struct {
	ID        string `json:"id" db:"id"`
	ChatID    string `json:"chat_id" db:"chat_id"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
