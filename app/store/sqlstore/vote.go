package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/sidekick-ai/sidekick-ai/pkg/register"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.VoteStore = NewVoteStore(provider)
	})
}

type VoteStore struct {
	CommonFields
}

func NewVoteStore(provider SqlProviderAchieve) *VoteStore {
	repo := &VoteStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_VOTE)
	repo.SetAllColumns("chat_id", "message_id", "is_upvoted")
	return repo
}

// Upsert 同一条消息重复投票时覆盖先前的方向
func (s *VoteStore) Upsert(ctx context.Context, data types.Vote) error {
	query := sq.Insert(s.GetTable()).
		Columns("chat_id", "message_id", "is_upvoted").
		Values(data.ChatID, data.MessageID, data.IsUpvoted).
		Suffix("ON CONFLICT (chat_id, message_id) DO UPDATE SET is_upvoted = EXCLUDED.is_upvoted")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *VoteStore) ListChatVotes(ctx context.Context, chatID string) ([]types.Vote, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"chat_id": chatID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Vote
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *VoteStore) DeleteChatVotes(ctx context.Context, chatID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"chat_id": chatID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
