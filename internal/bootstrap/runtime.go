// Package bootstrap wires the process-level dependencies shared by the
// server, migrate and seed commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/middleware"
	"pulse/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs ApplySchema after connecting.
	ApplySchema bool
	// SkipStorage leaves the upload store nil, for commands that never
	// touch files.
	SkipStorage bool
}

// Runtime holds the shared dependencies built from configuration.
type Runtime struct {
	DB    *gorm.DB
	Store storage.Store
}

// LoadConfig reads an optional .env file into the environment and then
// loads the viper configuration.
func LoadConfig(envFiles ...string) (*config.Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return config.LoadConfig()
}

// InitRuntime connects to the database and builds the upload store.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	rt := &Runtime{DB: db}
	if !opts.SkipStorage {
		store, err := storage.New(cfg)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("init storage: %w", err)
		}
		rt.Store = store
	}

	middleware.Logger.Info("Runtime initialized",
		slog.String("db_driver", cfg.DBDriver),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("env", cfg.Env),
	)
	return rt, nil
}

// Close releases the database pool.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return database.Close(r.DB)
}
