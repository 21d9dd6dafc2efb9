package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/studyaid/core/internal/middleware"
	"github.com/studyaid/core/internal/modules/content/project"
	"github.com/studyaid/core/internal/modules/processing/ai"
	"github.com/studyaid/core/internal/modules/system/core/health"
	"github.com/studyaid/core/internal/pkg/response"
)

func (a *App) registerRoutes(completer ai.Completer) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	rdb := a.rawRedis()
	root := r.Group("")

	health.RegisterRoutes(root, a.db, a.logger)

	projectSvc := project.NewService(a.db)
	project.NewHandler(projectSvc).RegisterRoutes(root, middleware.Idempotence(rdb))

	aiSvc := ai.NewService(completer, a.redis, a.cfg.AI, a.logger)
	ai.NewHandler(aiSvc).RegisterRoutes(root, middleware.RateLimit(rdb, a.cfg.RateLimit.Max, a.cfg.RateLimit.Window()))
}

func (a *App) rawRedis() *redis.Client {
	if a.redis == nil {
		return nil
	}
	return a.redis.Raw()
}
