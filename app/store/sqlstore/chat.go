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
		provider.stores.ChatStore = NewChatStore(provider)
	})
}

type ChatStore struct {
	CommonFields
}

func NewChatStore(provider SqlProviderAchieve) *ChatStore {
	repo := &ChatStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT)
	repo.SetAllColumns("id", "user_id", "companion_id", "title", "visibility", "created_at")
	return repo
}

func (s *ChatStore) Create(ctx context.Context, data types.Chat) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.Visibility == "" {
		data.Visibility = types.CHAT_VISIBILITY_PRIVATE
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "companion_id", "title", "visibility", "created_at").
		Values(data.ID, data.UserID, data.CompanionID, data.Title, data.Visibility, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatStore) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var chat types.Chat
	if err = s.GetReplica(ctx).Get(&chat, queryString, args...); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *ChatStore) UpdateTitle(ctx context.Context, id, title string) error {
	query := sq.Update(s.GetTable()).Set("title", title).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatStore) UpdateVisibility(ctx context.Context, id string, visibility types.ChatVisibility) error {
	query := sq.Update(s.GetTable()).Set("visibility", visibility).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChatStore) ListUserChats(ctx context.Context, userID string, page, pageSize uint64) ([]types.Chat, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if page != types.NO_PAGING && pageSize != types.NO_PAGING {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Chat
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ChatStore) Total(ctx context.Context, userID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"user_id": userID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
