package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sidekick-ai/sidekick-ai/app/core/srv"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	if conf.Quota == (types.QuotaTiers{}) {
		conf.Quota = types.DefaultQuotaTiers()
	}

	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	return toml.Unmarshal(c.bytes, cfg)
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`

	AI srv.AIConfig `toml:"ai"`

	Security Security         `toml:"security"`
	Quota    types.QuotaTiers `toml:"quota"`
	Cors     Cors             `toml:"cors"`

	bytes []byte `toml:"-"`
}

type Cors struct {
	// AllowOrigins 为空时放行所有来源
	AllowOrigins []string `toml:"allow_origins"`
}

func (c *Cors) FromENV() {
	if origins := os.Getenv("SIDEKICK_CORS_ALLOW_ORIGINS"); origins != "" {
		c.AllowOrigins = strings.Split(origins, ",")
	}
}

type Security struct {
	// TokenSecret 签发、校验访问令牌的对称密钥
	TokenSecret string `toml:"token_secret"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("SIDEKICK_API_SERVICE_ADDRESS")
	c.Security.TokenSecret = os.Getenv("SIDEKICK_TOKEN_SECRET")
	c.Quota = types.DefaultQuotaTiers()
	c.Cors.FromENV()
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("SIDEKICK_POSTGRESQL_DSN")
}

func (m PGConfig) FormatDSN() string {
	return m.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("SIDEKICK_REDIS_ADDR")
	r.Password = os.Getenv("SIDEKICK_REDIS_PASSWORD")
	if dbStr := os.Getenv("SIDEKICK_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("SIDEKICK_API_LOG_LEVEL")
	l.Path = os.Getenv("SIDEKICK_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
