package service

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/app/response"
	"github.com/sidekick-ai/sidekick-ai/cmd/service/handler"
	"github.com/sidekick-ai/sidekick-ai/cmd/service/middleware"
	"github.com/sidekick-ai/sidekick-ai/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)

	s.Engine.Use(middleware.I18n(), response.NewResponse(), middleware.Metrics(s.Core))
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := s.Core.Cfg().Cors.AllowOrigins; len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	s.Engine.Use(cors.New(corsCfg))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.POST("/register", ipLimit("register", core.WithLimit(5), core.WithRange(time.Minute)), s.Register)
		apiV1.POST("/login", ipLimit("login", core.WithLimit(10), core.WithRange(time.Minute)), s.Login)

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		chat := authed.Group("/chat")
		{
			chat.POST("", userLimit("chat"), s.ChatStream)
			chat.GET("/resume", s.ResumeChat)
			chat.DELETE("", s.DeleteChat)
			chat.PUT("/:chatid/visibility", s.UpdateChatVisibility)
			chat.GET("/:chatid/messages", s.ListChatMessages)
			chat.DELETE("/:chatid/messages", s.DeleteTrailingMessages)
			chat.PATCH("/:chatid/vote", s.VoteMessage)
			chat.GET("/:chatid/votes", s.ListChatVotes)
		}

		authed.GET("/chats", s.ListChats)

		companion := authed.Group("/companion")
		{
			companion.POST("", userLimit("companion"), s.CreateCompanion)
			companion.GET("/list", s.ListCompanions)
			companion.GET("/:id", s.GetCompanion)
			companion.PUT("/:id", s.UpdateCompanion)
			companion.DELETE("/:id", s.DeleteCompanion)
		}

		document := authed.Group("/document")
		{
			document.GET("/list", s.ListDocuments)
			document.GET("/:id", s.GetDocument)
			document.PUT("/:id", s.UpdateDocument)
			document.DELETE("/:id", s.DeleteDocument)
			document.GET("/:id/suggestions", s.ListDocumentSuggestions)
			document.PUT("/:id/suggestion/:suggestionid/resolve", s.ResolveDocumentSuggestion)
		}
	}
}
