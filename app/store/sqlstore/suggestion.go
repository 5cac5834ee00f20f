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
		provider.stores.SuggestionStore = NewSuggestionStore(provider)
	})
}

type SuggestionStore struct {
	CommonFields
}

func NewSuggestionStore(provider SqlProviderAchieve) *SuggestionStore {
	repo := &SuggestionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_SUGGESTION)
	repo.SetAllColumns("id", "document_id", "user_id", "original_text", "suggested_text", "description", "is_resolved", "created_at")
	return repo
}

func (s *SuggestionStore) BatchCreate(ctx context.Context, data []types.Suggestion) error {
	if len(data) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "document_id", "user_id", "original_text", "suggested_text", "description", "is_resolved", "created_at")
	for _, v := range data {
		if v.CreatedAt == 0 {
			v.CreatedAt = time.Now().Unix()
		}
		query = query.Values(v.ID, v.DocumentID, v.UserID, v.OriginalText, v.SuggestedText, v.Description, v.IsResolved, v.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *SuggestionStore) ListDocumentSuggestions(ctx context.Context, documentID string) ([]types.Suggestion, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("created_at ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Suggestion
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *SuggestionStore) Resolve(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("is_resolved", true).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
