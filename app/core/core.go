package core

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sidekick-ai/sidekick-ai/app/core/srv"
	"github.com/sidekick-ai/sidekick-ai/app/store/sqlstore"
	"github.com/sidekick-ai/sidekick-ai/pkg/streams"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	rds        *redis.Client
	cache      types.Cache
	httpClient *http.Client
	httpEngine *gin.Engine

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Minute * 5},
		metrics:    NewMetrics("sidekick", "core"),
		httpEngine: gin.New(),
	}

	setupSqlStore(core)

	// redis 未配置时以降级模式运行：锁退化为进程内实现，流恢复关闭
	var locker types.Locker
	if cfg.Redis.Addr != "" {
		core.rds = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		core.cache = NewRedisCache(core.rds)
		locker = NewRedisLocker(core.rds)
	} else {
		slog.Warn("redis is not configured, stream resumption disabled")
		locker = NewMemoryLocker()
	}

	core.srv = srv.SetupSrvs(
		srv.ApplyAI(srv.SetupAI(cfg.AI, core.httpClient)),
		srv.ApplyStreamHub(streams.NewHub(core.rds)),
		srv.ApplyLocker(locker),
	)

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	fmt.Println("setupSqlStore done")
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Cache() types.Cache {
	return s.cache
}

func (s *Core) HttpClient() *http.Client {
	return s.httpClient
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}
