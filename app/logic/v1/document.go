package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type DocumentLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewDocumentLogic(ctx context.Context, core *core.Core) *DocumentLogic {
	return &DocumentLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx),
	}
}

func (l *DocumentLogic) Get(id string) (*types.Document, error) {
	doc, err := l.core.Store().DocumentStore().Get(l.ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("DocumentLogic.Get.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return nil, errors.New("DocumentLogic.Get.DocumentStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if doc.UserID != l.GetUserInfo().User {
		return nil, errors.New("DocumentLogic.Get.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return doc, nil
}

func (l *DocumentLogic) List(page, pageSize uint64) ([]types.Document, error) {
	list, err := l.core.Store().DocumentStore().ListUserDocuments(l.ctx, l.GetUserInfo().User, page, pageSize)
	if err != nil {
		return nil, errors.New("DocumentLogic.List.DocumentStore.ListUserDocuments", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *DocumentLogic) Update(id, title, content string) error {
	if _, err := l.Get(id); err != nil {
		return err
	}

	if err := l.core.Store().DocumentStore().UpdateContent(l.ctx, l.GetUserInfo().User, id, title, content); err != nil {
		return errors.New("DocumentLogic.Update.DocumentStore.UpdateContent", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *DocumentLogic) Delete(id string) error {
	if _, err := l.Get(id); err != nil {
		return err
	}

	if err := l.core.Store().DocumentStore().Delete(l.ctx, l.GetUserInfo().User, id); err != nil {
		return errors.New("DocumentLogic.Delete.DocumentStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *DocumentLogic) ListSuggestions(documentID string) ([]types.Suggestion, error) {
	if _, err := l.Get(documentID); err != nil {
		return nil, err
	}

	list, err := l.core.Store().SuggestionStore().ListDocumentSuggestions(l.ctx, documentID)
	if err != nil {
		return nil, errors.New("DocumentLogic.ListSuggestions.SuggestionStore.ListDocumentSuggestions", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *DocumentLogic) ResolveSuggestion(documentID, suggestionID string) error {
	if _, err := l.Get(documentID); err != nil {
		return err
	}

	if err := l.core.Store().SuggestionStore().Resolve(l.ctx, suggestionID); err != nil {
		return errors.New("DocumentLogic.ResolveSuggestion.SuggestionStore.Resolve", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
