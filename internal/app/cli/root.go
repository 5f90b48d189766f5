package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"elms/internal/app/server"
	"elms/internal/domain/leave"
	"elms/internal/domain/scoring"
	"elms/internal/platform/cache"
	"elms/internal/platform/config"
	"elms/internal/platform/db"
	"elms/internal/platform/jobs"
	"elms/internal/platform/logger"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	EnvFile string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "elms",
		Short:         "ELMS - Employee Leave Management System",
		Long:          "Backend for employee leave requests, approvals, balances and performance scores.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the process environment")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newRolloverCommand(opts))
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, config.Load(opts.EnvFile))
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				applied, err := db.Migrate(ctx, pool, db.MigrationSource(cfg.MigrationsDir))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"applied": applied})
			})
		},
	}
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load leave types, departments, holidays and the admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				if file != "" {
					cfg.SeedFile = file
				}
				data, err := db.LoadSeedData(cfg.SeedFile)
				if err != nil {
					return err
				}
				summary, err := db.Seed(ctx, pool, cfg, data)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (defaults to SEED_FILE)")
	return cmd
}

func newRolloverCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Create missing leave balances for the current year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				leaveSvc := leave.NewService(leave.NewStore(pool))
				if cfg.RedisURL != "" {
					client, err := cache.Connect(ctx, cfg.RedisURL)
					if err != nil {
						return fmt.Errorf("redis connect: %w", err)
					}
					defer client.Close()
					leaveSvc.AddListener(scoring.NewService(scoring.NewStore(pool), cache.NewScoreCache(client, cfg.ScoreCacheTTL)))
				}
				runner := jobs.New(pool, func(ctx context.Context) (any, error) {
					return leaveSvc.RunRollover(ctx)
				}, 0)
				summary, err := runner.RunRollover(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func withDatabase(ctx context.Context, opts *RootOptions, fn func(context.Context, config.Config, *pgxpool.Pool) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load(opts.EnvFile)
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
