package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	in := DefaultSettings()
	in.ShopName = "متجر التجربة"
	in.MaxBackups = 7
	in.CloudFolder = "/mnt/drive"
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// The temp file from the atomic write must not linger.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shop_name":"x"}`), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "x", s.ShopName)
	assert.Equal(t, DefaultSettings().MaxBackups, s.MaxBackups)
	assert.Equal(t, DefaultSettings().Currency, s.Currency)
}

func TestShouldAutoBackup(t *testing.T) {
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	s := DefaultSettings()
	s.AutoBackup = false
	assert.False(t, ShouldAutoBackup(s, now))

	s.AutoBackup = true
	s.LastAutoBackup = ""
	assert.True(t, ShouldAutoBackup(s, now), "never backed up")

	s.LastAutoBackup = now.Add(-2 * time.Hour).Format(time.RFC3339)
	assert.False(t, ShouldAutoBackup(s, now), "already ran today")

	s.LastAutoBackup = now.AddDate(0, 0, -1).Format(time.RFC3339)
	assert.True(t, ShouldAutoBackup(s, now), "daily, last run yesterday")

	s.BackupFrequency = "weekly"
	s.LastAutoBackup = now.AddDate(0, 0, -3).Format(time.RFC3339)
	assert.False(t, ShouldAutoBackup(s, now), "weekly, only three days passed")

	s.LastAutoBackup = now.AddDate(0, 0, -8).Format(time.RFC3339)
	assert.True(t, ShouldAutoBackup(s, now), "weekly, eight days passed")

	s.LastAutoBackup = "garbage"
	assert.True(t, ShouldAutoBackup(s, now), "unparseable stamp triggers a run")
}
