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
		provider.stores.ChatStreamStore = NewChatStreamStore(provider)
	})
}

type ChatStreamStore struct {
	CommonFields
}

func NewChatStreamStore(provider SqlProviderAchieve) *ChatStreamStore {
	repo := &ChatStreamStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_STREAM)
	repo.SetAllColumns("id", "chat_id", "created_at")
	return repo
}

func (s *ChatStreamStore) Create(ctx context.Context, data types.ChatStream) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "chat_id", "created_at").
		Values(data.ID, data.ChatID, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatStreamStore) LatestChatStream(ctx context.Context, chatID string) (*types.ChatStream, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var stream types.ChatStream
	if err = s.GetReplica(ctx).Get(&stream, queryString, args...); err != nil {
		return nil, err
	}
	return &stream, nil
}

func (s *ChatStreamStore) DeleteChatStreams(ctx context.Context, chatID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"chat_id": chatID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
