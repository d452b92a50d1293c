// Command server runs the shop management HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hussiny/internal/config"
	"hussiny/internal/core/sequence"
	"hussiny/internal/domain/audit"
	"hussiny/internal/domain/auth"
	"hussiny/internal/domain/backup"
	"hussiny/internal/domain/catalog"
	"hussiny/internal/domain/ledger"
	"hussiny/internal/domain/repairs"
	"hussiny/internal/domain/reports"
	"hussiny/internal/domain/sales"
	"hussiny/internal/domain/search"
	"hussiny/internal/domain/transfers"
	v1 "hussiny/internal/infrastructure/http/v1"
	"hussiny/internal/infrastructure/http/v1/handlers"
	"hussiny/internal/infrastructure/storage/sqlite"
	"hussiny/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	log.Infow("database ready", "path", cfg.DatabasePath)

	txManager := sqlite.NewTxManager(store)
	numbers := sequence.NewGenerator(sqlite.NewSequenceAllocator(txManager), nil)

	productRepo := sqlite.NewProductRepo(txManager)
	categoryRepo := sqlite.NewCategoryRepo(txManager)
	supplierRepo := sqlite.NewSupplierRepo(txManager)
	customerRepo := sqlite.NewCustomerRepo(txManager)
	movementRepo := sqlite.NewMovementRepo(txManager)
	saleRepo := sqlite.NewSaleRepo(txManager)
	repairRepo := sqlite.NewRepairRepo(txManager)
	transferRepo := sqlite.NewTransferRepo(txManager)
	userRepo := sqlite.NewUserRepo(txManager)
	roleRepo := sqlite.NewRoleRepo(txManager)
	reportRepo := sqlite.NewReportRepo(txManager)
	backupRepo := sqlite.NewBackupRepo(txManager)

	auditRec := audit.NewRecorder(sqlite.NewAuditRepo(txManager))

	ledgerSvc := ledger.NewService(movementRepo, txManager)
	catalogSvc := catalog.NewService(productRepo, categoryRepo, supplierRepo, customerRepo, ledgerSvc, txManager, auditRec)
	salesSvc := sales.NewService(saleRepo, productRepo, customerRepo, ledgerSvc, numbers, txManager, auditRec, nil)
	repairsSvc := repairs.NewService(repairRepo, customerRepo, numbers, txManager, auditRec, nil)
	transfersSvc := transfers.NewService(transferRepo, numbers, txManager, auditRec)
	reportsSvc := reports.NewService(reportRepo, nil)
	searchSvc := search.NewService(sqlite.NewSearchSources(txManager), nil, nil)

	jwtSvc := auth.NewJWTService(cfg.JWTSecret, 0)
	authSvc := auth.NewService(userRepo, roleRepo, jwtSvc, auditRec, nil)

	backupSvc := backup.NewService(store, backupRepo, cfg.BackupDir, cfg.SettingsPath, auditRec, nil)
	scheduler := backup.NewScheduler(backupSvc, cfg.SettingsPath, 0)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := v1.NewRouter(log, authSvc, v1.Handlers{
		Health:    handlers.NewHealthHandler(),
		Auth:      handlers.NewAuthHandler(authSvc),
		Products:  handlers.NewProductHandler(catalogSvc, ledgerSvc),
		Catalog:   handlers.NewCatalogHandler(catalogSvc),
		Sales:     handlers.NewSalesHandler(salesSvc),
		Repairs:   handlers.NewRepairsHandler(repairsSvc),
		Transfers: handlers.NewTransfersHandler(transfersSvc),
		Reports:   handlers.NewReportsHandler(reportsSvc),
		Search:    handlers.NewSearchHandler(searchSvc),
		Backup:    handlers.NewBackupHandler(backupSvc, cfg.SettingsPath),
		Users:     handlers.NewUsersHandler(authSvc),
		Settings:  handlers.NewSettingsHandler(cfg.SettingsPath, auditRec),
		Audit:     handlers.NewAuditHandler(auditRec),
	}, cfg.Development)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", cfg.HTTPAddr, "version", config.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
