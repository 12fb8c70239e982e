// Command migrate applies, inspects and rolls back the database schema.
//
//	migrate up       apply pending SQL migrations
//	migrate auto     run GORM AutoMigrate (development only)
//	migrate status   list applied and pending versions
//	migrate down     roll back the newest applied version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"pulse/internal/bootstrap"
	"pulse/internal/config"
	"pulse/internal/database"
)

type command func(ctx context.Context, cfg *config.Config, rt *bootstrap.Runtime, m *database.Migrator) error

var commands = map[string]command{
	"up":     migrateUp,
	"auto":   migrateAuto,
	"status": migrateStatus,
	"down":   migrateDown,
}

func main() {
	flag.Usage = func() {
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate <%s>\n", strings.Join(names, "|"))
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, strings.ToLower(strings.TrimSpace(flag.Arg(0)))); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, name string) error {
	cmd, ok := commands[name]
	if !ok {
		return flag.ErrHelp
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipStorage: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	migrations, err := database.Migrations()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	return cmd(ctx, cfg, rt, database.NewMigrator(rt.DB, migrations))
}

func migrateUp(ctx context.Context, _ *config.Config, _ *bootstrap.Runtime, m *database.Migrator) error {
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	log.Println("schema is up to date")
	return nil
}

func migrateAuto(ctx context.Context, cfg *config.Config, rt *bootstrap.Runtime, _ *database.Migrator) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, rt.DB, cfg); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("models auto-migrated")
	return nil
}

func migrateStatus(ctx context.Context, cfg *config.Config, _ *bootstrap.Runtime, m *database.Migrator) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return fmt.Errorf("read applied versions: %w", err)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return fmt.Errorf("read pending versions: %w", err)
	}
	log.Printf("driver=%s mode=%s applied=%d pending=%d", cfg.DBDriver, cfg.DBSchemaMode, len(applied), len(pending))
	for _, p := range pending {
		log.Printf("  pending %s", p)
	}
	return nil
}

func migrateDown(ctx context.Context, _ *config.Config, _ *bootstrap.Runtime, m *database.Migrator) error {
	rolledBack, err := m.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if rolledBack {
		log.Println("rolled back newest migration")
	} else {
		log.Println("nothing to roll back")
	}
	return nil
}
