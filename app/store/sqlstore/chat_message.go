package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sidekick-ai/sidekick-ai/pkg/register"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChatMessageStore = NewChatMessageStore(provider)
	})
}

type ChatMessageStore struct {
	CommonFields
}

func NewChatMessageStore(provider SqlProviderAchieve) *ChatMessageStore {
	repo := &ChatMessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_MESSAGE)
	repo.SetAllColumns("id", "chat_id", "role", "parts", "attachments", "created_at")
	return repo
}

func (s *ChatMessageStore) Create(ctx context.Context, data *types.Message) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.Attachments == nil {
		data.Attachments = types.MessageAttachments{}
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "chat_id", "role", "parts", "attachments", "created_at").
		Values(data.ID, data.ChatID, data.Role, data.Parts, data.Attachments, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatMessageStore) GetMessage(ctx context.Context, id string) (*types.Message, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var msg types.Message
	if err = s.GetReplica(ctx).Get(&msg, queryString, args...); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *ChatMessageStore) ListChatMessages(ctx context.Context, chatID string) ([]types.Message, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("created_at ASC", "id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Message
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ChatMessageStore) LatestAssistantMessage(ctx context.Context, chatID string) (*types.Message, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"chat_id": chatID, "role": types.MESSAGE_ROLE_ASSISTANT}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var msg types.Message
	if err = s.GetReplica(ctx).Get(&msg, queryString, args...); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUserMessagesSince 通过 chat 表关联统计某用户 since 之后发送的消息数
func (s *ChatMessageStore) CountUserMessagesSince(ctx context.Context, userID string, since int64) (int64, error) {
	chatTable := types.TABLE_CHAT.Name()
	query := sq.Select("COUNT(*)").From(s.GetTable() + " m").
		Join(chatTable + " c ON c.id = m.chat_id").
		Where(sq.Eq{"c.user_id": userID, "m.role": types.MESSAGE_ROLE_USER}).
		Where(sq.GtOrEq{"m.created_at": since})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var count int64
	if err = s.GetReplica(ctx).Get(&count, queryString, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ChatMessageStore) DeleteChatMessages(ctx context.Context, chatID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"chat_id": chatID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatMessageStore) DeleteMessagesAfter(ctx context.Context, chatID string, createdAt int64) error {
	query := sq.Delete(s.GetTable()).
		Where(sq.Eq{"chat_id": chatID}).
		Where(sq.GtOrEq{"created_at": createdAt})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
