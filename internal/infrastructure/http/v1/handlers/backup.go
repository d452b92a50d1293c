package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/config"
	"hussiny/internal/domain/backup"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// BackupHandler serves backup and restore operations.
type BackupHandler struct {
	BaseHandler
	service      *backup.Service
	settingsPath string
}

// NewBackupHandler creates a backup handler.
func NewBackupHandler(service *backup.Service, settingsPath string) *BackupHandler {
	return &BackupHandler{service: service, settingsPath: settingsPath}
}

// Create writes a new backup.
func (h *BackupHandler) Create(c *gin.Context) {
	var req dto.CreateBackupRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), req.Compress, false)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// Restore replaces the live database with a backup file.
func (h *BackupHandler) Restore(c *gin.Context) {
	var req dto.RestoreRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Restore(c.Request.Context(), req.Path); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "database restored")
}

// List returns known backups, newest first.
func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.service.List(c.Request.Context(), h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, backups)
}

// Cleanup prunes backups beyond the configured retention.
func (h *BackupHandler) Cleanup(c *gin.Context) {
	settings, err := config.LoadSettings(h.settingsPath)
	if err != nil {
		h.Error(c, err)
		return
	}

	removed, err := h.service.Cleanup(c.Request.Context(), settings.MaxBackups)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"removed": removed})
}

// Export copies a backup to an external folder. An empty folder in the
// request falls back to the configured cloud folder.
func (h *BackupHandler) Export(c *gin.Context) {
	var req dto.ExportBackupRequest
	if !h.BindJSON(c, &req) {
		return
	}

	folder := req.Folder
	if folder == "" {
		settings, err := config.LoadSettings(h.settingsPath)
		if err != nil {
			h.Error(c, err)
			return
		}
		folder = settings.CloudFolder
	}

	dst, err := h.service.ExportToFolder(c.Request.Context(), req.Path, folder)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"exported": dst})
}
