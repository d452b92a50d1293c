package backup

import (
	"context"
	"sync"
	"time"

	"hussiny/internal/config"
	"hussiny/pkg/logger"
)

// Scheduler runs automatic backups in the background according to the shop
// settings (daily or weekly), pruning old files after each run.
type Scheduler struct {
	service      *Service
	settingsPath string
	interval     time.Duration

	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler that re-checks the settings every
// interval. A non-positive interval defaults to one hour.
func NewScheduler(service *Service, settingsPath string, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		service:      service,
		settingsPath: settingsPath,
		interval:     interval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the background loop. One check runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop shuts the loop down and waits for it to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := config.LoadSettings(s.settingsPath)
	if err != nil {
		logger.Warn(ctx, "auto-backup: could not load settings", "error", err)
		return
	}

	now := time.Now()
	if !config.ShouldAutoBackup(settings, now) {
		return
	}

	b, err := s.service.Create(ctx, true, true)
	if err != nil {
		logger.Error(ctx, "auto-backup failed", "error", err)
		return
	}

	if settings.CloudFolder != "" {
		if _, err := s.service.ExportToFolder(ctx, b.Path, settings.CloudFolder); err != nil {
			logger.Warn(ctx, "auto-backup: cloud export failed", "error", err)
		}
	}

	settings.LastAutoBackup = now.Format(time.RFC3339)
	if err := config.SaveSettings(s.settingsPath, settings); err != nil {
		logger.Warn(ctx, "auto-backup: could not stamp settings", "error", err)
	}

	if settings.MaxBackups > 0 {
		if _, err := s.service.Cleanup(ctx, settings.MaxBackups); err != nil {
			logger.Warn(ctx, "auto-backup: cleanup failed", "error", err)
		}
	}
}
