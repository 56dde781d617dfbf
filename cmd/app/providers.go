package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/coinboard/coinboard/internal/domain/account"
	"github.com/coinboard/coinboard/internal/infra/avatarstore"
	"github.com/coinboard/coinboard/internal/infra/config"
	"github.com/coinboard/coinboard/internal/infra/tokenstore"
	"github.com/coinboard/coinboard/internal/infra/userrepo"
)

func provideAccountConfig(cfg *config.Config) account.Config {
	return account.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
	}
}

func provideRepository(cfg *config.Config, logger *slog.Logger) account.Repository {
	fallback := userrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres user repository enabled")
	return userrepo.NewPostgresRepository(pool)
}

func provideBlacklist(cfg *config.Config, logger *slog.Logger) account.TokenBlacklist {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory blacklist", "error", err)
			return tokenstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory blacklist", "error", err)
			return tokenstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory blacklist", "error", err)
		} else {
			logger.Info("valkey token blacklist enabled", "addr", cfg.Valkey.Addr)
			return tokenstore.NewValkeyStore(client, "blacklist")
		}
	}
	return tokenstore.NewMemoryStore()
}

func provideAvatarStorage(cfg *config.Config, logger *slog.Logger) account.AvatarStorage {
	if cfg.Storage.Enabled {
		store, err := avatarstore.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey,
			cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, logger)
		if err != nil {
			logger.Error("failed to initialize object storage, falling back to memory store", "error", err)
			return avatarstore.NewMemoryStore()
		}
		logger.Info("object storage for profile pictures enabled", "bucket", cfg.Storage.Bucket)
		return store
	}
	return avatarstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
