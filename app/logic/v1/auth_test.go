package v1_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/pkg/security"
)

func NewCore(t *testing.T) *core.Core {
	t.Helper()
	path := os.Getenv("SIDEKICK_TEST_CONFIG_PATH")
	if path == "" {
		t.Skip("SIDEKICK_TEST_CONFIG_PATH not set")
	}
	return core.MustSetupCore(core.MustLoadBaseConfig(path))
}

// NewUserContext 构造携带登录态的请求上下文
func NewUserContext(userID, plan string) context.Context {
	claims := security.NewTokenClaims(userID, plan, time.Now().Add(time.Hour))
	return context.WithValue(context.Background(), v1.TOKEN_CONTEXT_KEY, claims)
}

func Test_RegisterAndLogin(t *testing.T) {
	appCore := NewCore(t)

	email := fmt.Sprintf("tester-%d@example.com", time.Now().UnixNano())
	password := "testpwd123"

	logic := v1.NewAuthLogic(context.Background(), appCore)
	registered, err := logic.Register(email, password)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEmpty(t, registered.UserID)
	assert.NotEmpty(t, registered.AccessToken)

	// 重复注册同一邮箱应失败
	_, err = logic.Register(email, password)
	assert.Error(t, err)

	loggedIn, err := logic.Login(email, password)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, registered.UserID, loggedIn.UserID)

	claims, err := security.ParseToken(loggedIn.AccessToken, appCore.Cfg().Security.TokenSecret)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, registered.UserID, claims.User)

	_, err = logic.Login(email, "wrong-password")
	assert.Error(t, err)
}
