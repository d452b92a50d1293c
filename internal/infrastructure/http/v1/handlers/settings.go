package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/config"
	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/audit"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// SettingsHandler serves shop preferences.
type SettingsHandler struct {
	BaseHandler
	settingsPath string
	audit        *audit.Recorder
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settingsPath string, auditRec *audit.Recorder) *SettingsHandler {
	return &SettingsHandler{settingsPath: settingsPath, audit: auditRec}
}

// Get returns the current shop preferences.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := config.LoadSettings(h.settingsPath)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.OK(c, settings)
}

// Update replaces the shop preferences. The last auto-backup stamp is
// preserved across updates.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.MaxBackups <= 0 {
		h.Error(c, apperror.NewValidation("maxBackups must be positive"))
		return
	}
	if req.BackupFrequency != "" && req.BackupFrequency != "daily" && req.BackupFrequency != "weekly" {
		h.Error(c, apperror.NewValidation("backupFrequency must be daily or weekly"))
		return
	}

	current, err := config.LoadSettings(h.settingsPath)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	settings := config.Settings{
		ShopName:        req.ShopName,
		Currency:        req.Currency,
		DefaultTaxRate:  req.DefaultTaxRate,
		MaxBackups:      req.MaxBackups,
		AutoBackup:      req.AutoBackup,
		BackupFrequency: req.BackupFrequency,
		LastAutoBackup:  current.LastAutoBackup,
		CloudFolder:     req.CloudFolder,
	}
	if settings.BackupFrequency == "" {
		settings.BackupFrequency = "daily"
	}

	if err := config.SaveSettings(h.settingsPath, settings); err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.audit.Record(c.Request.Context(), "update", "settings", "", settings)
	h.OK(c, settings)
}
