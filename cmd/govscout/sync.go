package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/govscout/govscout/internal/daemon"
	"github.com/govscout/govscout/internal/display"
	"github.com/govscout/govscout/internal/samgov"
	govsync "github.com/govscout/govscout/internal/sync"
	"github.com/govscout/govscout/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Sync opportunities into the local database",
	Long: `Sync recent and historical opportunities within an API-call budget.

Each run has two phases:
  1. Incremental: fetch notices posted in the last 3 days
  2. Backfill: walk backwards in 90-day windows from the saved cursor
     while at least 2 calls of budget remain

The cursor is saved after every window, so an interrupted or rate-limited
run resumes where it stopped.

Examples:
  govscout sync                         # one run, default budget
  govscout sync --max-calls 50
  govscout sync --from 01/01/2024       # backfill no further than this date
  govscout sync --from "6 months ago"
  govscout sync --dry-run               # show the plan, fetch nothing
  govscout sync --schedule "@every 6h"  # keep running until interrupted`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		opts := govsync.Options{MaxAPICalls: cfg.Sync.MaxAPICalls}
		if flags.Changed("max-calls") {
			opts.MaxAPICalls, _ = flags.GetInt("max-calls")
		}
		opts.DryRun, _ = flags.GetBool("dry-run")
		opts.From, _ = flags.GetString("from")
		if opts.MaxAPICalls < 1 {
			return fmt.Errorf("--max-calls must be at least 1")
		}

		schedule := cfg.Sync.Schedule
		if flags.Changed("schedule") {
			schedule, _ = flags.GetString("schedule")
		}
		if schedule != "" && opts.DryRun {
			return fmt.Errorf("--dry-run cannot be combined with --schedule")
		}

		asJSON, _ := flags.GetBool("json")
		asYAML, _ := flags.GetBool("yaml")
		format, err := display.FormatFromFlags(asJSON, asYAML)
		if err != nil {
			return err
		}

		// A dry run makes no requests, so it works without an API key.
		var fetcher govsync.WindowFetcher
		if !opts.DryRun || cfg.RequireAPIKey() == nil {
			client, err := newClient()
			if err != nil {
				return err
			}
			fetcher = samgov.NewPager(client, logger)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		scheduler := govsync.New(fetcher, s, logger)

		if schedule != "" {
			d, err := daemon.New(scheduler, &daemon.Config{
				Schedule:   schedule,
				Options:    opts,
				RunOnStart: true,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s Starting scheduled sync...\n", ui.RenderAccent("🚀"))
			fmt.Printf("   Schedule: %s\n", schedule)
			fmt.Printf("   Budget per run: %d calls\n", opts.MaxAPICalls)
			fmt.Printf("   Database: %s\n", s.Path())
			fmt.Printf("\nPress Ctrl+C to stop\n\n")

			if err := d.Start(ctx); err != nil {
				return fmt.Errorf("daemon stopped with error: %w", err)
			}
			stats := d.Stats()
			fmt.Printf("%s Stopped after %d runs (%d failed)\n", ui.RenderPass("✓"), stats.Runs, stats.Failures)
			return nil
		}

		summary, runErr := scheduler.Run(ctx, opts)
		if summary != nil {
			if format != display.Text {
				if err := display.Encode(os.Stdout, format, summary); err != nil {
					return err
				}
			} else {
				display.SyncSummary(os.Stdout, summary)
			}
		}
		if runErr != nil {
			return fmt.Errorf("sync failed: %w", runErr)
		}
		return nil
	},
}

func init() {
	flags := syncCmd.Flags()
	flags.Int("max-calls", 0, "API call budget for the run (overrides sync.max_api_calls, default 10)")
	flags.Bool("dry-run", false, "Print the window plan without fetching or writing")
	flags.String("from", "", "Backfill floor: MM/DD/YYYY or relative, e.g. \"6 months ago\"")
	flags.String("schedule", "", "Cron spec to run repeatedly, e.g. \"@every 6h\" or \"0 */4 * * *\"")
	flags.Bool("json", false, "Output the run summary as JSON")
	flags.Bool("yaml", false, "Output the run summary as YAML")
	rootCmd.AddCommand(syncCmd)
}
