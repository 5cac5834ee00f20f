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
		provider.stores.CompanionStore = NewCompanionStore(provider)
	})
}

type CompanionStore struct {
	CommonFields
}

func NewCompanionStore(provider SqlProviderAchieve) *CompanionStore {
	repo := &CompanionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_COMPANION)
	repo.SetAllColumns("id", "user_id", "name", "role", "rules", "created_at")
	return repo
}

func (s *CompanionStore) Create(ctx context.Context, data types.Companion) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "name", "role", "rules", "created_at").
		Values(data.ID, data.UserID, data.Name, data.Role, data.Rules, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *CompanionStore) GetCompanion(ctx context.Context, id string) (*types.Companion, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var companion types.Companion
	if err = s.GetReplica(ctx).Get(&companion, queryString, args...); err != nil {
		return nil, err
	}
	return &companion, nil
}

func (s *CompanionStore) Update(ctx context.Context, userID, id string, data types.UpdateCompanionArgs) error {
	query := sq.Update(s.GetTable()).
		Set("name", data.Name).
		Set("role", data.Role).
		Set("rules", data.Rules).
		Where(sq.Eq{"user_id": userID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *CompanionStore) Delete(ctx context.Context, userID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"user_id": userID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *CompanionStore) ListUserCompanions(ctx context.Context, userID string) ([]types.Companion, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Companion
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}
