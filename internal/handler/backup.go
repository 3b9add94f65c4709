package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/models"
	"github.com/daqo/pomodoro/internal/store"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler writes store snapshots to the backup directory and restores
// from them.
type BackupHandler struct {
	DB        *gorm.DB
	Store     *store.Store
	Engine    *engine.Engine
	BackupDir string
}

func NewBackupHandler(db *gorm.DB, st *store.Store, e *engine.Engine, backupDir string) *BackupHandler {
	return &BackupHandler{
		DB:        db,
		Store:     st,
		Engine:    e,
		BackupDir: backupDir,
	}
}

// CreateBackup exports the full snapshot blob to a new file.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	raw, err := h.Store.ExportSnapshot()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export snapshot failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create backup dir failed")
		return
	}

	fileName := fmt.Sprintf("backup-%s.json", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, raw, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write backup file failed")
		return
	}

	backup := models.Backup{
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(raw)),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save backup record failed")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups lists existing backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query backups failed")
		return
	}

	items := make([]gin.H, 0, len(backups))
	for _, b := range backups {
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"backups": items,
	})
}

// DownloadBackup streams a backup file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// RestoreBackup replaces the entry history with a backup's contents, then
// re-resumes the engine so a restored ongoing entry behaves exactly like
// one found at process start.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	raw, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read backup file failed")
		return
	}

	h.Engine.Abort()
	if err := h.Store.ImportSnapshot(raw); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore snapshot failed")
		return
	}
	if err := h.Engine.ResumeFromPersisted(); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "resume after restore failed")
		return
	}

	util.Success(c, util.Response{
		"status": h.Engine.Status(),
	})
}

// DeleteBackup removes a backup record and its file.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(&models.Backup{}, backup.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete backup failed")
		return
	}
	_ = os.Remove(backup.FilePath)

	util.Success(c, util.Response{
		"message": "backup deleted",
	})
}

func (h *BackupHandler) findBackup(c *gin.Context) (*models.Backup, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}

	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query backup failed")
		}
		return nil, false
	}
	return &backup, true
}
