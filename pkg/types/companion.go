package types

// Companion 可配置的对话人格，其 Rules 会作为系统提示词的一部分
// 覆盖对话默认行为。
type Companion struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	Name      string `json:"name" db:"name"`
	Role      string `json:"role" db:"role"`
	Rules     string `json:"rules" db:"rules"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

type UpdateCompanionArgs struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Rules string `json:"rules"`
}
