package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/database"
	"github.com/studyaid/core/internal/middleware"
	"github.com/studyaid/core/internal/modules/processing/ai"
	pkgredis "github.com/studyaid/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	redis  *pkgredis.Client
	logger *zap.Logger
}

// New wires config → DB → Redis → AI provider → routes. Missing or
// unreachable collaborators are logged and degrade the routes that need them.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	applyRuntimeSettings(cfg)

	return newApp(logger, cfg, openDatabase(cfg, logger), openRedis(cfg, logger), newCompleter(cfg, logger)), nil
}

func newApp(logger *zap.Logger, cfg *config.AppConfig, db *gorm.DB, rc *pkgredis.Client, completer ai.Completer) *App {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(newCORSConfig(cfg)))

	app := &App{cfg: cfg, router: router, db: db, redis: rc, logger: logger}
	app.registerRoutes(completer)
	return app
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the database pool and the Redis client.
func (a *App) Shutdown() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}
