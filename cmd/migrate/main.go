package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/db"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name, for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS), for -cmd=version")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// Offline commands only touch the migrations directory.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		versions, err := migrate.ValidateDir(opts.dir)
		if err != nil {
			return err
		}
		fmt.Printf("%d migrations ok\n", len(versions))
		return nil
	case "up", "down", "status":
	case "version":
		if opts.version == "" {
			return errors.New("-version is required")
		}
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == config.LogFormatConsole,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"dir":    opts.dir,
		"driver": cfg.DB.Driver,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		return err
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	if opts.cmd == "version" {
		err = migrate.MigrateToVersion(ctx, sqlDB, cfg.DB.Driver, opts.dir, opts.version)
	} else {
		err = migrate.Run(ctx, sqlDB, cfg.DB.Driver, opts.dir, opts.cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
