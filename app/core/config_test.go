package core

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

func TestSetupConfigFromEnv(t *testing.T) {
	addr := "localhost:11111"
	os.Setenv("SIDEKICK_API_SERVICE_ADDRESS", addr)

	cfg := LoadBaseConfigFromENV()

	assert.Equal(t, cfg.Addr, addr)
	// 未显式配置时回落到默认额度
	assert.Equal(t, cfg.Quota, types.DefaultQuotaTiers())
}

func TestLoadBaseConfigFromToml(t *testing.T) {
	raw := []byte(`
addr = "0.0.0.0:8080"

[security]
token_secret = "test-secret"

[quota]
guest = 5
regular = 50
pro = 500

[ai.openai]
token = "sk-test"
chat_model = "gpt-4o"
`)
	path := t.TempDir() + "/sidekick.toml"
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := MustLoadBaseConfig(path)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "test-secret", cfg.Security.TokenSecret)
	assert.Equal(t, int64(5), cfg.Quota.Guest)
	assert.Equal(t, int64(500), cfg.Quota.Pro)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAI.ChatModel)
}
