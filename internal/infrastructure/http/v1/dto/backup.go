package dto

// CreateBackupRequest creates a backup.
type CreateBackupRequest struct {
	Compress bool `json:"compress"`
}

// RestoreRequest restores from a backup file.
type RestoreRequest struct {
	Path string `json:"path" binding:"required"`
}

// ExportBackupRequest copies a backup to an external folder.
type ExportBackupRequest struct {
	Path   string `json:"path" binding:"required"`
	Folder string `json:"folder"`
}

// SettingsRequest updates shop preferences.
type SettingsRequest struct {
	ShopName        string  `json:"shopName" binding:"required"`
	Currency        string  `json:"currency" binding:"required"`
	DefaultTaxRate  float64 `json:"defaultTaxRate"`
	MaxBackups      int     `json:"maxBackups"`
	AutoBackup      bool    `json:"autoBackup"`
	BackupFrequency string  `json:"backupFrequency"`
	CloudFolder     string  `json:"cloudFolder"`
}
