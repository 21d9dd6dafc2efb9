package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyaid/core/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterRoutes mounts /health and /db-ping. Both always answer 200; db-ping
// reports the database state in the body. db may be nil.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rg.GET("/db-ping", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"db": "not configured"})
			return
		}
		if err := database.Ping(c.Request.Context(), db); err != nil {
			logger.Warn("database ping failed", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"db": "error", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"db": "ok"})
	})
}
