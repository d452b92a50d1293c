// Command seed bootstraps a fresh installation: default roles, the admin
// account, starter categories and the settings file.
package main

import (
	"context"
	"flag"
	"os"

	"hussiny/internal/config"
	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/audit"
	"hussiny/internal/domain/auth"
	"hussiny/internal/domain/catalog"
	"hussiny/internal/infrastructure/storage/sqlite"
	"hussiny/pkg/logger"
)

var defaultRoles = []auth.Role{
	{Name: "admin", Permissions: auth.PermissionSet{auth.PermissionAll}},
	{Name: "cashier", Permissions: auth.PermissionSet{"products", "sales", "transfers"}},
	{Name: "technician", Permissions: auth.PermissionSet{"products", "repairs"}},
}

var defaultCategories = []string{
	"موبايلات",
	"اكسسوارات",
	"شواحن",
	"سماعات",
	"قطع غيار",
}

func main() {
	email := flag.String("email", "admin@hussiny.local", "admin account email")
	password := flag.String("password", "", "admin account password (required)")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if *password == "" {
		log.Error("missing -password flag")
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := logger.WithLogger(context.Background(), log)

	if err := run(ctx, cfg, *email, *password); err != nil {
		log.Errorw("seed failed", "error", err)
		os.Exit(1)
	}
	log.Infow("seed complete", "admin", *email)
}

func run(ctx context.Context, cfg config.Config, email, password string) error {
	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	txManager := sqlite.NewTxManager(store)
	userRepo := sqlite.NewUserRepo(txManager)
	roleRepo := sqlite.NewRoleRepo(txManager)
	categoryRepo := sqlite.NewCategoryRepo(txManager)
	auditRec := audit.NewRecorder(sqlite.NewAuditRepo(txManager))

	authSvc := auth.NewService(userRepo, roleRepo, auth.NewJWTService(cfg.JWTSecret, 0), auditRec, nil)

	for _, role := range defaultRoles {
		r := role
		if err := authSvc.CreateRole(ctx, &r); err != nil {
			if apperror.IsCode(err, apperror.CodeDuplicate) {
				continue
			}
			return err
		}
		logger.Info(ctx, "role created", "name", r.Name)
	}

	admin, err := roleRepo.GetByName(ctx, "admin")
	if err != nil {
		return err
	}

	u := &auth.User{Email: email, Name: "Administrator", RoleID: admin.ID}
	if err := authSvc.CreateUser(ctx, u, password); err != nil {
		if !apperror.IsCode(err, apperror.CodeDuplicate) {
			return err
		}
		logger.Info(ctx, "admin account already exists", "email", email)
	}

	existing, err := categoryRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, name := range defaultCategories {
			if err := categoryRepo.Create(ctx, &catalog.Category{Name: name}); err != nil {
				return err
			}
		}
		logger.Info(ctx, "starter categories created", "count", len(defaultCategories))
	}

	if _, err := os.Stat(cfg.SettingsPath); os.IsNotExist(err) {
		if err := config.SaveSettings(cfg.SettingsPath, config.DefaultSettings()); err != nil {
			return err
		}
		logger.Info(ctx, "settings file created", "path", cfg.SettingsPath)
	}

	return nil
}
