package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/smartcare/internal/app"
	"github.com/Freeeeeet/smartcare/internal/config"
	"github.com/Freeeeeet/smartcare/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "smartcare",
		Short:        "Patient routing: triage and appointment reservations",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reconciliation sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app.App, logger *zap.Logger) error {
				if migrate {
					if err := a.Migrate(ctx); err != nil {
						return err
					}
				}
				return a.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App, logger *zap.Logger) error {
				return a.Migrate(cmd.Context())
			})
		},
	}
}

func sweepCmd() *cobra.Command {
	var (
		repair bool
		grace  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare reserved slots with the reservation ledger once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App, logger *zap.Logger) error {
				report, err := a.Reservations.Reconcile(cmd.Context(), service.ReconcileOptions{
					Repair: repair,
					Grace:  grace,
				})
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "append missing CONFIRMED ledger entries")
	cmd.Flags().DurationVar(&grace, "grace", time.Minute, "skip slots reserved more recently than this")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func withApp(ctx context.Context, fn func(a *app.App, logger *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting smartcare",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
	)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialise application", zap.Error(err))
		return err
	}
	defer a.Close()

	return fn(a, logger)
}
