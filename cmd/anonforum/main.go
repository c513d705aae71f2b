package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ButyrinIA/anonforum/internal/config"
	"github.com/ButyrinIA/anonforum/internal/forum"
	"github.com/ButyrinIA/anonforum/internal/logger"
	"github.com/ButyrinIA/anonforum/internal/seed"
	"github.com/ButyrinIA/anonforum/internal/storage"
	"github.com/ButyrinIA/anonforum/internal/storage/memory"
	"github.com/ButyrinIA/anonforum/internal/storage/postgres"
	redisstore "github.com/ButyrinIA/anonforum/internal/storage/redis"
	"github.com/ButyrinIA/anonforum/internal/storage/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app - состояние одного запуска CLI
type app struct {
	configPath  string
	storageType string
	verbose     bool

	cfg     *config.Config
	logger  *zap.Logger
	backend storage.Backend
	store   *forum.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "anonforum",
		Short: "Anonymous discussion board kept in local storage",
		Long: `anonforum keeps posts, comments and likes in a single local document.

The document lives in a key-value backend (sqlite file by default,
or memory, postgres, redis) and is rewritten after every change.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to the configuration file")
	root.PersistentFlags().StringVar(&a.storageType, "storage", "", "storage backend: memory, sqlite, postgres or redis")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.postCmd(),
		a.commentCmd(),
		a.likeCmd(),
		a.searchCmd(),
		a.tagCmd(),
		a.trendingCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.cleanCmd(),
		a.clearCmd(),
		a.seedCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storageType != "" {
		cfg.Storage.Type = a.storageType
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	a.logger, err = logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.backend, err = openBackend(cfg)
	if err != nil {
		return err
	}
	a.logger.Debug("Storage initialized", zap.String("type", cfg.Storage.Type))

	opts := []forum.Option{
		forum.WithLogger(a.logger),
		forum.WithCapacity(cfg.Storage.Capacity),
	}
	if cfg.Storage.SeedSamples {
		opts = append(opts, forum.WithSeed(seed.Samples))
	}
	a.store = forum.Open(ctx, a.backend, opts...)
	return nil
}

// teardown вызывается после Execute: PersistentPostRun не срабатывает при ошибке команды
func (a *app) teardown() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	var (
		backend storage.Backend
		err     error
	)
	switch cfg.Storage.Type {
	case config.StorageMemory:
		backend = memory.New()
	case config.StorageSQLite:
		var s *sqlite.SQLiteStorage
		s, err = sqlite.New(cfg.SQLite.Path)
		if err == nil {
			backend = s
		}
	case config.StoragePostgres:
		var s *postgres.PostgresStorage
		s, err = postgres.New(cfg.Postgres.DSN)
		if err == nil {
			backend = s
		}
	case config.StorageRedis:
		var s *redisstore.RedisStorage
		s, err = redisstore.New(cfg.Redis.Addr, cfg.Redis.Prefix)
		if err == nil {
			backend = s
		}
	default:
		err = fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.teardown()
	if err != nil {
		os.Exit(1)
	}
}
