package store

import (
	"context"

	"github.com/sidekick-ai/sidekick-ai/pkg/sqlstore"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type UserStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
}

type ChatStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Chat) error
	GetChat(ctx context.Context, id string) (*types.Chat, error)
	UpdateTitle(ctx context.Context, id, title string) error
	UpdateVisibility(ctx context.Context, id string, visibility types.ChatVisibility) error
	Delete(ctx context.Context, id string) error
	ListUserChats(ctx context.Context, userID string, page, pageSize uint64) ([]types.Chat, error)
	Total(ctx context.Context, userID string) (int64, error)
}

type ChatMessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.Message) error
	GetMessage(ctx context.Context, id string) (*types.Message, error)
	ListChatMessages(ctx context.Context, chatID string) ([]types.Message, error)
	LatestAssistantMessage(ctx context.Context, chatID string) (*types.Message, error)
	// CountUserMessagesSince 滚动窗口内用户发送的消息数，用于额度检查
	CountUserMessagesSince(ctx context.Context, userID string, since int64) (int64, error)
	DeleteChatMessages(ctx context.Context, chatID string) error
	DeleteMessagesAfter(ctx context.Context, chatID string, createdAt int64) error
}

// ChatStreamStore 仅追加的流恢复账本
type ChatStreamStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.ChatStream) error
	LatestChatStream(ctx context.Context, chatID string) (*types.ChatStream, error)
	DeleteChatStreams(ctx context.Context, chatID string) error
}

type VoteStore interface {
	sqlstore.SqlCommons
	Upsert(ctx context.Context, data types.Vote) error
	ListChatVotes(ctx context.Context, chatID string) ([]types.Vote, error)
	DeleteChatVotes(ctx context.Context, chatID string) error
}

type CompanionStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Companion) error
	GetCompanion(ctx context.Context, id string) (*types.Companion, error)
	Update(ctx context.Context, userID, id string, data types.UpdateCompanionArgs) error
	Delete(ctx context.Context, userID, id string) error
	ListUserCompanions(ctx context.Context, userID string) ([]types.Companion, error)
}

type DocumentStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.Document) error
	Get(ctx context.Context, id string) (*types.Document, error)
	UpdateContent(ctx context.Context, userID, id, title, content string) error
	ListUserDocuments(ctx context.Context, userID string, page, pageSize uint64) ([]types.Document, error)
	Delete(ctx context.Context, userID, id string) error
}

type SuggestionStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, data []types.Suggestion) error
	ListDocumentSuggestions(ctx context.Context, documentID string) ([]types.Suggestion, error)
	Resolve(ctx context.Context, id string) error
}
