// Command govscout searches SAM.gov contract opportunities and keeps a local
// SQLite mirror of them in sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/govscout/govscout/internal/config"
	"github.com/govscout/govscout/internal/logging"
	"github.com/govscout/govscout/internal/samgov"
	"github.com/govscout/govscout/internal/store"
	"github.com/govscout/govscout/internal/ui"
)

var (
	configPath string
	noColor    bool

	v      *viper.Viper
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "govscout",
	Short: "Search and sync federal contract opportunities from SAM.gov",
	Long: `GovScout searches contract opportunities on SAM.gov and mirrors them
into a local SQLite database.

The API key is read from SAMGOV_API_KEY (a .env file in the working
directory is loaded first). The database defaults to ./govscout.db and can
be moved with --db or GOVSCOUT_DB.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		v = config.New()
		flags := cmd.Root().PersistentFlags()
		_ = v.BindPFlag("db_path", flags.Lookup("db"))
		_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

		var err error
		if cfg, err = config.Load(v, configPath); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Log); err != nil {
			return err
		}
		if noColor {
			ui.DisableColor()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Query Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "data", Title: "Data Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (yaml or toml; default ./govscout.yaml)")
	flags.String("db", "", "Database path (default govscout.db)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the configured database, creating it if needed.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
	}
	return s, nil
}

// newClient builds a SAM.gov client, failing early without an API key.
func newClient() (*samgov.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return samgov.NewClient(samgov.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
}
