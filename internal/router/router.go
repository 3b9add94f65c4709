package router

import (
	"net/http"

	"github.com/daqo/pomodoro/internal/config"
	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/handler"
	"github.com/daqo/pomodoro/internal/middleware"
	"github.com/daqo/pomodoro/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, st *store.Store, eng *engine.Engine) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(cfg.Auth)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	// an empty password hash means the instance runs open, e.g. bound to
	// localhost only
	if cfg.Auth.PasswordHash != "" {
		protected.Use(middleware.AuthMiddleware(cfg.Auth.Secret))
	}

	timerHandler := handler.NewTimerHandler(eng)
	protected.POST("/timer/start", timerHandler.Start)
	protected.POST("/timer/complete", timerHandler.ManualComplete)
	protected.POST("/timer/reconcile", timerHandler.Reconcile)
	protected.GET("/timer/status", timerHandler.Status)

	entryHandler := handler.NewEntryHandler(st)
	protected.GET("/entries", entryHandler.ListByDate)
	protected.GET("/entries/ongoing", entryHandler.Ongoing)
	protected.POST("/entries/:id/click", timerHandler.ClickEntry)
	protected.GET("/stats/monthly", entryHandler.MonthlyCounts)

	exportHandler := handler.NewExportHandler(st)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, st, eng, cfg.Backup.Dir)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	adminHandler := handler.NewAdminHandler(st, eng)
	protected.POST("/admin/reset", adminHandler.Reset)

	return r
}
