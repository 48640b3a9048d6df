package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timesheet-hr/timesheet-backend-go/internal/app"
	"github.com/timesheet-hr/timesheet-backend-go/internal/config"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository"
)

type rootOptions struct {
	driver  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "hoursctl",
		Short:        "Maintenance commands for the timesheet backend",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "override DB_DRIVER (postgres, mongo, memory)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall deadline of the command")

	cmd.AddCommand(
		newMigrateLedgerKeysCmd(opts),
		newSweepCmd(opts),
		newHolidaysCmd(),
		newDeviceCmd(opts),
		newUserCmd(opts),
		newTokenCmd(),
	)

	return cmd
}

// session is an opened store with its services.
type session struct {
	cfg      *config.Config
	services *app.Services
	close    func()
}

func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	if opts.driver != "" {
		if err := os.Setenv("DB_DRIVER", opts.driver); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	repos, closeRepos, err := repository.Open(ctx, cfg.Database, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	services, err := app.NewServices(cfg, repos)
	if err != nil {
		closeRepos()
		return nil, err
	}

	return &session{
		cfg:      cfg,
		services: services,
		close: func() {
			services.Close()
			closeRepos()
		},
	}, nil
}

func withSession(opts *rootOptions, fn func(ctx context.Context, s *session) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		defer cancel()

		s, err := openSession(ctx, opts)
		if err != nil {
			return err
		}
		defer s.close()

		return fn(ctx, s)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
