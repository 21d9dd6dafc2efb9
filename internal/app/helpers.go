package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/database"
	"github.com/studyaid/core/internal/modules/processing/ai"
	"github.com/studyaid/core/internal/pkg/nativelog"
	pkgredis "github.com/studyaid/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func applyRuntimeSettings(cfg *config.AppConfig) {
	_ = os.Setenv(nativelog.EnvLogDir, cfg.LogDir())
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// openDatabase returns nil when the database is not configured or the
// settings are unusable; project routes then answer 503.
func openDatabase(cfg *config.AppConfig, logger *zap.Logger) *gorm.DB {
	if !cfg.Database.Configured() {
		logger.Warn("database not configured, project routes disabled")
		return nil
	}

	db, err := database.Connect(cfg, false)
	if err != nil {
		logger.Error("database setup failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		return nil
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("database migration failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	} else {
		logger.Info("database ready", zap.String("driver", cfg.Database.Driver))
	}
	return db
}

func openRedis(cfg *config.AppConfig, logger *zap.Logger) *pkgredis.Client {
	if !cfg.Redis.Enable {
		return nil
	}
	rc, err := pkgredis.Connect(cfg.Redis.URLValue())
	if err != nil {
		logger.Warn("redis unavailable, caching and rate limiting disabled", zap.Error(err))
		return nil
	}
	return rc
}

func newCompleter(cfg *config.AppConfig, logger *zap.Logger) ai.Completer {
	completer, err := ai.NewCompleter(cfg.AI)
	if err != nil {
		logger.Warn("AI provider unavailable, study generators will answer 503",
			zap.String("provider", cfg.AI.Provider),
			zap.Error(err),
		)
		return nil
	}
	logger.Info("AI provider ready",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model),
	)
	return completer
}
