package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"hussiny/internal/config"
	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/pkg/logger"
)

// sqliteMagic is the 16-byte header every SQLite database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// filePrefix names all backup files.
const filePrefix = "hussiny_backup_"

// Service creates, restores and prunes backups.
type Service struct {
	db           DatabaseController
	repo         Repository
	backupDir    string
	settingsPath string
	audit        auditor
	now          func() time.Time
}

type auditor interface {
	Record(ctx context.Context, action, module, recordID string, details any)
}

// NewService creates a backup service. A nil clock defaults to time.Now.
func NewService(db DatabaseController, repo Repository, backupDir, settingsPath string, aud auditor, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:           db,
		repo:         repo,
		backupDir:    backupDir,
		settingsPath: settingsPath,
		audit:        aud,
		now:          now,
	}
}

// Create writes a backup of the live database into the backup directory.
// With compress, the result is a zip holding the database file, a manifest
// and the current settings file; otherwise a plain .db copy.
func (s *Service) Create(ctx context.Context, compress, automatic bool) (*Backup, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, apperror.NewBackup("could not create backup directory", err)
	}
	if err := s.db.Checkpoint(ctx); err != nil {
		return nil, apperror.NewBackup("could not flush database", err)
	}

	stamp := s.now().Format("20060102_150405")
	dbName := filePrefix + stamp + ".db"

	var (
		path string
		err  error
	)
	if compress {
		path = filepath.Join(s.backupDir, filePrefix+stamp+".zip")
		err = s.writeZip(path, dbName)
	} else {
		path = filepath.Join(s.backupDir, dbName)
		err = copyFile(s.db.Path(), path)
	}
	if err != nil {
		return nil, apperror.NewBackup("could not write backup file", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperror.NewBackup("could not stat backup file", err)
	}

	b := &Backup{
		FileName:   filepath.Base(path),
		Path:       path,
		SizeBytes:  info.Size(),
		Compressed: compress,
		Automatic:  automatic,
		UserID:     appctx.GetUserID(ctx),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		logger.Warn(ctx, "backup created but history row failed", "path", path, "error", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, "create", "backups", b.FileName, map[string]any{
			"size":      b.SizeBytes,
			"automatic": automatic,
		})
	}
	logger.Info(ctx, "backup created", "file", b.FileName, "size", b.SizeBytes)
	return b, nil
}

func (s *Service) writeZip(zipPath, dbEntryName string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	dbw, err := zw.Create(dbEntryName)
	if err != nil {
		return err
	}
	src, err := os.Open(s.db.Path())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dbw, src); err != nil {
		src.Close()
		return err
	}
	src.Close()

	manifest := Manifest{
		ID:         uuid.NewString(),
		CreatedAt:  s.now(),
		AppVersion: config.AppVersion,
	}
	mw, err := zw.Create("manifest.json")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(mw).Encode(manifest); err != nil {
		return err
	}

	if data, err := os.ReadFile(s.settingsPath); err == nil {
		sw, err := zw.Create("settings.json")
		if err != nil {
			return err
		}
		if _, err := sw.Write(data); err != nil {
			return err
		}
	}

	return zw.Close()
}

// Restore replaces the live database with the given backup. The file is
// validated first and the current database is snapshotted next to the
// backups, so a bad restore never destroys data. The connection pool is
// closed for the swap and reopened after.
func (s *Service) Restore(ctx context.Context, path string) error {
	dbBytes, err := s.extractDatabase(path)
	if err != nil {
		return err
	}
	if len(dbBytes) < len(sqliteMagic) || !bytes.Equal(dbBytes[:len(sqliteMagic)], sqliteMagic) {
		return apperror.NewBackup("file is not a SQLite database", nil)
	}

	// Snapshot what we are about to overwrite.
	if _, err := s.Create(ctx, false, true); err != nil {
		return apperror.NewBackup("could not snapshot current database before restore", err)
	}

	if err := s.db.Swap(dbBytes); err != nil {
		return apperror.NewBackup("could not swap database file", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, "restore", "backups", filepath.Base(path), nil)
	}
	logger.Info(ctx, "database restored", "from", filepath.Base(path))
	return nil
}

// extractDatabase reads the database bytes out of a backup file, handling
// both plain .db copies and zipped backups.
func (s *Service) extractDatabase(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperror.NewBackup("backup file not found", err)
	}
	if info.IsDir() {
		return nil, apperror.NewBackup("backup path is a directory", nil)
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, apperror.NewBackup("could not open backup archive", err)
		}
		defer zr.Close()

		for _, entry := range zr.File {
			if !strings.EqualFold(filepath.Ext(entry.Name), ".db") {
				continue
			}
			rc, err := entry.Open()
			if err != nil {
				return nil, apperror.NewBackup("could not read archive entry", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, apperror.NewBackup("could not read archive entry", err)
			}
			return data, nil
		}
		return nil, apperror.NewBackup("archive contains no database file", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.NewBackup("could not read backup file", err)
	}
	return data, nil
}

// List returns known backups, newest first. Files present on disk but
// missing from history (e.g. copied in manually) are included too.
func (s *Service) List(ctx context.Context, limit int) ([]Backup, error) {
	if limit <= 0 {
		limit = 50
	}

	known, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(known))
	for _, b := range known {
		seen[b.FileName] = true
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return known, nil
		}
		return nil, apperror.NewBackup("could not list backup directory", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || seen[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		known = append(known, Backup{
			FileName:   e.Name(),
			Path:       filepath.Join(s.backupDir, e.Name()),
			SizeBytes:  info.Size(),
			Compressed: strings.EqualFold(filepath.Ext(e.Name()), ".zip"),
			CreatedAt:  info.ModTime(),
		})
	}

	sort.Slice(known, func(i, j int) bool {
		return known[i].CreatedAt.After(known[j].CreatedAt)
	})
	if len(known) > limit {
		known = known[:limit]
	}
	return known, nil
}

// Cleanup deletes backup files beyond the newest keep. Best effort: a file
// that cannot be removed is logged and skipped.
func (s *Service) Cleanup(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, apperror.NewValidation("keep must be positive")
	}

	all, err := s.List(ctx, 10000)
	if err != nil {
		return 0, err
	}
	if len(all) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range all[keep:] {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn(ctx, "could not remove old backup", "file", b.FileName, "error", err)
			continue
		}
		_ = s.repo.DeleteByPath(ctx, b.Path)
		removed++
	}

	if removed > 0 {
		logger.Info(ctx, "old backups pruned", "removed", removed, "kept", keep)
	}
	return removed, nil
}

// ExportToFolder copies a backup file into an external folder, typically a
// cloud-synced directory.
func (s *Service) ExportToFolder(ctx context.Context, backupPath, folder string) (string, error) {
	if folder == "" {
		return "", apperror.NewValidation("export folder is not configured")
	}
	if _, err := os.Stat(backupPath); err != nil {
		return "", apperror.NewBackup("backup file not found", err)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", apperror.NewBackup("could not create export folder", err)
	}

	dst := filepath.Join(folder, filepath.Base(backupPath))
	if err := copyFile(backupPath, dst); err != nil {
		return "", apperror.NewBackup("could not copy backup", err)
	}

	logger.Info(ctx, "backup exported", "to", dst)
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
