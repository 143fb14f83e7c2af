package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/edulearn/internal/bootstrap"
	"github.com/yigit/edulearn/internal/config"
	"github.com/yigit/edulearn/internal/db"
)

// rootCmd is the admin entry point; subcommands share config and logging setup.
var rootCmd = &cobra.Command{
	Use:           "eductl",
	Short:         "eductl administers an EduLearn deployment",
	Long:          `eductl runs schema migrations, creates manager accounts and performs maintenance tasks against the configured database.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger("eductl")
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: lgr}, nil
}

// withPool opens the database for the duration of fn.
func withPool(ctx context.Context, fn func(rt *runtime, pool *pgxpool.Pool) error) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	database, err := db.NewPostgresDB(ctx, rt.cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("could not connect to the database: %w", err)
	}
	defer database.Close()
	return fn(rt, database.Pool)
}
