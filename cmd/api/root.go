package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/filedrop/service/internal/auth"
	"github.com/filedrop/service/internal/config"
	"github.com/filedrop/service/internal/logger"
)

// newRootCommand returns the root command with all subcommands attached.
// Running it without a subcommand starts the server.
func newRootCommand(fs afero.Fs) *cobra.Command {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "Anonymous file drop service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, fs)
		},
	}
	rootCmd.AddCommand(newServeCommand(fs))
	rootCmd.AddCommand(newSweepCommand(fs))
	rootCmd.AddCommand(newTokenCommand())
	return rootCmd
}

// newServeCommand creates the 'serve' command.
func newServeCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the retention sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, fs)
		},
	}
}

// newSweepCommand creates the 'sweep' command, a single retention cycle for
// deployments that prefer cron over the built-in ticker.
func newSweepCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:     "sweep",
		Short:   "Evict expired files once and exit",
		Example: "$ api sweep",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(ctx, cfg, log, fs)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.sweeper.SweepOnce(ctx)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d evicted=%d raced=%d failed=%d took=%s\n",
				report.Scanned, report.Evicted, report.Raced, report.Failed, report.Duration)
			if report.Failed > 0 {
				return fmt.Errorf("%d files could not be evicted", report.Failed)
			}
			return nil
		},
	}
}

// newTokenCommand creates the 'token' command, which prints an admin token.
func newTokenCommand() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Print a bearer token for the admin endpoints",
		Example: "$ api token --subject ops --ttl 24h",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.AdminEnabled() {
				return fmt.Errorf("ADMIN_JWT_SECRET is not set")
			}
			token, err := auth.IssueToken(cfg.AdminJWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

// bootstrap loads configuration and builds the logger.
func bootstrap(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, loadedDotenv, err := config.Load(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if !loadedDotenv {
		log.Debug("no .env file found, reading from environment")
	}
	return cfg, log, nil
}
