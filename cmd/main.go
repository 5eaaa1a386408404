package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SweetDelights/internal/config"
	"SweetDelights/internal/db"
	"SweetDelights/internal/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bakery",
	Short: "Sweet Delights bakery catalog",
	Long: `Sweet Delights serves the bakery catalog website and its admin panel.

Configuration is read from the environment (DB_DRIVER, DATABASE_URL,
SESSION_SECRET, UPLOAD_DIR, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogDev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(seedCmd)
}

// openStore connects to the configured database and migrates it.
func openStore(ctx context.Context) (*db.Store, error) {
	logger.Info("opening database", zap.String("target", cfg.Target()))
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DSN(), db.WithSessionTTL(cfg.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
