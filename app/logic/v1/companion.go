package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

type CompanionLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewCompanionLogic(ctx context.Context, core *core.Core) *CompanionLogic {
	return &CompanionLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx),
	}
}

func (l *CompanionLogic) Create(name, role, rules string) (*types.Companion, error) {
	companion := types.Companion{
		ID:        utils.GenUniqIDStr(),
		UserID:    l.GetUserInfo().User,
		Name:      name,
		Role:      role,
		Rules:     rules,
		CreatedAt: time.Now().Unix(),
	}
	if err := l.core.Store().CompanionStore().Create(l.ctx, companion); err != nil {
		return nil, errors.New("CompanionLogic.Create.CompanionStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &companion, nil
}

func (l *CompanionLogic) Get(id string) (*types.Companion, error) {
	companion, err := l.core.Store().CompanionStore().GetCompanion(l.ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("CompanionLogic.Get.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return nil, errors.New("CompanionLogic.Get.CompanionStore.GetCompanion", i18n.ERROR_INTERNAL, err)
	}
	return companion, nil
}

func (l *CompanionLogic) Update(id string, args types.UpdateCompanionArgs) error {
	if _, err := l.ownedCompanion(id); err != nil {
		return err
	}

	if err := l.core.Store().CompanionStore().Update(l.ctx, l.GetUserInfo().User, id, args); err != nil {
		return errors.New("CompanionLogic.Update.CompanionStore.Update", i18n.ERROR_INTERNAL, err)
	}
	l.dropCache(id)
	return nil
}

func (l *CompanionLogic) Delete(id string) error {
	if _, err := l.ownedCompanion(id); err != nil {
		return err
	}

	if err := l.core.Store().CompanionStore().Delete(l.ctx, l.GetUserInfo().User, id); err != nil {
		return errors.New("CompanionLogic.Delete.CompanionStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	l.dropCache(id)
	return nil
}

// dropCache 写后主动失效，缓存故障不影响主流程
func (l *CompanionLogic) dropCache(id string) {
	cache := l.core.Cache()
	if cache == nil {
		return
	}
	if err := cache.Del(l.ctx, protocol.GenCompanionCacheKey(id)); err != nil {
		slog.Warn("failed to invalidate companion cache", slog.String("companion_id", id), slog.String("error", err.Error()))
	}
}

func (l *CompanionLogic) List() ([]types.Companion, error) {
	list, err := l.core.Store().CompanionStore().ListUserCompanions(l.ctx, l.GetUserInfo().User)
	if err != nil {
		return nil, errors.New("CompanionLogic.List.CompanionStore.ListUserCompanions", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *CompanionLogic) ownedCompanion(id string) (*types.Companion, error) {
	companion, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if companion.UserID != l.GetUserInfo().User {
		return nil, errors.New("CompanionLogic.owned.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return companion, nil
}
