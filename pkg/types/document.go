package types

type DocumentKind string

const (
	DOCUMENT_KIND_TEXT DocumentKind = "text"
	DOCUMENT_KIND_CODE DocumentKind = "code"
)

// Document 由 createDocument / updateDocument 工具产出的文档。
type Document struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Title     string       `json:"title" db:"title"`
	Content   string       `json:"content" db:"content"`
	Kind      DocumentKind `json:"kind" db:"kind"`
	CreatedAt int64        `json:"created_at" db:"created_at"`
	UpdatedAt int64        `json:"updated_at" db:"updated_at"`
}

// Suggestion requestSuggestions 工具针对文档产出的修改建议。
type Suggestion struct {
	ID            string `json:"id" db:"id"`
	DocumentID    string `json:"document_id" db:"document_id"`
	UserID        string `json:"user_id" db:"user_id"`
	OriginalText  string `json:"original_text" db:"original_text"`
	SuggestedText string `json:"suggested_text" db:"suggested_text"`
	Description   string `json:"description" db:"description"`
	IsResolved    bool   `json:"is_resolved" db:"is_resolved"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
}
