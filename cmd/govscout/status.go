package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/govscout/govscout/internal/display"
	"github.com/govscout/govscout/internal/store"
	"github.com/govscout/govscout/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show sync progress and database contents",
	Long: `Display the local database status.

Shows:
  - Database location and record counts
  - Last sync date and backfill cursor
  - The most recent API call log entries`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("calls")
		asJSON, _ := cmd.Flags().GetBool("json")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		format, err := display.FormatFromFlags(asJSON, asYAML)
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			fmt.Printf("\n%s Database not initialized\n", ui.RenderWarn("⚠"))
			fmt.Printf("   Run 'govscout sync' or 'govscout search' to create %s\n\n", cfg.DBPath)
			return nil
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		report := &display.StatusReport{DBPath: s.Path()}
		if report.Opportunities, err = s.CountOpportunities(ctx); err != nil {
			return err
		}
		if report.Contacts, err = s.CountContacts(ctx); err != nil {
			return err
		}
		if report.LastSync, _, err = s.GetSyncState(ctx, store.KeyLastSync); err != nil {
			return err
		}
		if report.BackfillCursor, _, err = s.GetSyncState(ctx, store.KeyBackfillCursor); err != nil {
			return err
		}
		if limit > 0 {
			if report.RecentCalls, err = s.ListAPICallLogs(ctx, limit); err != nil {
				return err
			}
		}

		if format != display.Text {
			return display.Encode(os.Stdout, format, report)
		}
		display.Status(os.Stdout, report)
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:     "types",
	GroupID: "query",
	Short:   "Print opportunity type and set-aside reference codes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		format, _ := display.FormatFromFlags(asJSON, false)
		if format == display.JSON {
			return display.Encode(os.Stdout, format, map[string][]display.Code{
				"notice_types": display.NoticeTypes,
				"set_asides":   display.SetAsideCodes,
			})
		}
		display.Types(os.Stdout)
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("calls", 10, "Number of recent API call log entries to show")
	statusCmd.Flags().Bool("json", false, "Output JSON")
	statusCmd.Flags().Bool("yaml", false, "Output YAML")
	typesCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(typesCmd)
}
