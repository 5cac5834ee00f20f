package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/security"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

// tokenLifetime 签发的访问令牌有效期
const tokenLifetime = time.Hour * 24 * 30

type AuthLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAuthLogic(ctx context.Context, core *core.Core) *AuthLogic {
	return &AuthLogic{
		ctx:  ctx,
		core: core,
	}
}

type AuthResult struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

func (l *AuthLogic) Register(email, password string) (*AuthResult, error) {
	exist, err := l.core.Store().UserStore().GetByEmail(l.ctx, email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthLogic.Register.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("AuthLogic.Register.exist", i18n.ERROR_EMAIL_ALREADY_REGISTED, nil).Code(http.StatusBadRequest)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, errors.New("AuthLogic.Register.HashPassword", i18n.ERROR_INTERNAL, err)
	}

	user := types.User{
		ID:        utils.GenUniqIDStr(),
		Email:     email,
		Password:  hashed,
		Plan:      types.USER_PLAN_REGULAR,
		CreatedAt: time.Now().Unix(),
	}
	if err = l.core.Store().UserStore().Create(l.ctx, user); err != nil {
		return nil, errors.New("AuthLogic.Register.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}

	return l.issueToken(user)
}

func (l *AuthLogic) Login(email, password string) (*AuthResult, error) {
	user, err := l.core.Store().UserStore().GetByEmail(l.ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("AuthLogic.Login.notfound", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, nil).Code(http.StatusUnauthorized)
		}
		return nil, errors.New("AuthLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}

	if !security.VerifyPassword(user.Password, password) {
		return nil, errors.New("AuthLogic.Login.password", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, nil).Code(http.StatusUnauthorized)
	}

	return l.issueToken(*user)
}

func (l *AuthLogic) issueToken(user types.User) (*AuthResult, error) {
	claims := security.NewTokenClaims(user.ID, string(user.Plan), time.Now().Add(tokenLifetime))
	token, err := security.SignToken(claims, l.core.Cfg().Security.TokenSecret)
	if err != nil {
		return nil, errors.New("AuthLogic.issueToken.SignToken", i18n.ERROR_INTERNAL, err)
	}

	return &AuthResult{
		UserID:      user.ID,
		AccessToken: token,
	}, nil
}
