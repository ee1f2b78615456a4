package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kjsce/kj-connect/internal/bootstrap"
)

const defaultMigrationTimeout = 5 * time.Minute

// migrateTimeout reads -timeout; zero or negative values are usage errors.
func migrateTimeout(cmdCtx *commandContext, args []string) (time.Duration, error) {
	fs := newFlagSet(cmdCtx, "migrate")
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "upper bound for applying all pending migrations")
	if err := parseFlags(fs, args); err != nil {
		return 0, err
	}
	if *timeout <= 0 {
		err := fmt.Errorf("%w: -timeout must be positive, got %s", errUsage, *timeout)
		if werr := writef(fs.Output(), "%v\n", err); werr != nil {
			return 0, errors.Join(err, werr)
		}
		return 0, err
	}
	return *timeout, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	timeout, err := migrateTimeout(cmdCtx, args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("close catalog database", "error", closeErr)
		}
	}()

	if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "migrations applied to %s\n", cmdCtx.Config.Postgres.Name)
}
