package main

import (
	"context"
	"errors"
	"os"

	"devplan/internal/config"
	"devplan/internal/database"
	"devplan/internal/domain"
	"devplan/internal/pkg/logger"
	"devplan/internal/pkg/password"
	"devplan/internal/repository"

	"go.uber.org/zap"
)

type seedUser struct {
	name      string
	email     string
	password  string
	role      domain.Role
	reportsTo string // email of the manager, if any
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	log.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	users := []seedUser{
		{
			name:     "Administrator",
			email:    getEnv("SEED_ADMIN_EMAIL", "admin@devplan.local"),
			password: os.Getenv("SEED_ADMIN_PASSWORD"),
			role:     domain.RoleAdmin,
		},
	}
	// Demo team only outside production.
	if !cfg.IsProd() {
		users = append(users,
			seedUser{name: "Demo Manager", email: "manager@devplan.local", password: "manager123", role: domain.RoleManager},
			seedUser{name: "Demo Report", email: "report@devplan.local", password: "report123", role: domain.RoleUser, reportsTo: "manager@devplan.local"},
		)
	}

	if users[0].password == "" {
		if cfg.IsProd() {
			log.Fatal("SEED_ADMIN_PASSWORD is required in production")
		}
		users[0].password = "admin123"
	}

	repo := repository.NewUserRepository(db)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	ctx := context.Background()

	for _, su := range users {
		if err := seed(ctx, repo, hasher, su); err != nil {
			log.Fatal("seed user failed", zap.String("email", su.email), zap.Error(err))
		}
		log.Info("user ready", zap.String("email", su.email), zap.String("role", su.role.String()))
	}
}

func seed(ctx context.Context, repo *repository.UserRepository, hasher password.Hasher, su seedUser) error {
	exists, err := repo.ExistsByEmail(ctx, su.email)
	if err != nil || exists {
		return err
	}

	hash, err := hasher.Hash(su.password)
	if err != nil {
		return err
	}
	u := &domain.User{
		Name:         su.name,
		Email:        su.email,
		PasswordHash: hash,
		Role:         su.role,
		IsActive:     true,
	}
	if su.reportsTo != "" {
		m, err := repo.GetByEmail(ctx, su.reportsTo)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if m != nil {
			u.ManagerID = &m.ID
		}
	}
	return repo.Create(ctx, u)
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
