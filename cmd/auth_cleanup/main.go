package main

import (
	"context"
	"os"
	"time"

	"devplan/internal/config"
	"devplan/internal/database"
	"devplan/internal/modules/auth"
	"devplan/internal/pkg/jwt"
	"devplan/internal/pkg/logger"
	"devplan/internal/pkg/password"
	"devplan/internal/repository"

	"go.uber.org/zap"
)

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
		log.Fatal("db connect failed", zap.Error(err))
	}

	svc := auth.NewService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL),
		password.NewBcryptHasher(cfg.BcryptCost),
		cfg.RefreshTokenPepper,
		cfg.RefreshTTL,
		auth.WithLogger(log),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := svc.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Fatal("cleanup refresh_tokens failed", zap.Error(err))
	}
	log.Info("auth cleanup completed", zap.Int64("refresh_tokens", n))
}
