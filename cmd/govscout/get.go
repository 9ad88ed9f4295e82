package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/govscout/govscout/internal/display"
	"github.com/govscout/govscout/internal/samgov"
)

var getCmd = &cobra.Command{
	Use:     "get <notice-id>",
	GroupID: "query",
	Short:   "View a specific opportunity by notice ID",
	Long: `Look up one opportunity by notice ID and print its details.

By default the notice is fetched from SAM.gov and saved locally. With
--local it is read from the database instead, no API key needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noticeID := args[0]

		local, _ := cmd.Flags().GetBool("local")
		asJSON, _ := cmd.Flags().GetBool("json")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		format, err := display.FormatFromFlags(asJSON, asYAML)
		if err != nil {
			return err
		}

		var client *samgov.Client
		if !local {
			if client, err = newClient(); err != nil {
				return err
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var opp *samgov.Opportunity
		if local {
			opp, err = s.GetOpportunity(ctx, noticeID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s is not in the local database (run without --local to fetch it)", noticeID)
			}
			if err != nil {
				return err
			}
		} else {
			if opp, err = client.Get(ctx, noticeID); err != nil {
				return err
			}
			if err := s.UpsertOpportunity(ctx, opp); err != nil {
				return fmt.Errorf("failed to save %s: %w", noticeID, err)
			}
		}

		if format != display.Text {
			return display.Encode(os.Stdout, format, opp)
		}
		display.Opportunity(os.Stdout, opp)
		return nil
	},
}

func init() {
	getCmd.Flags().Bool("local", false, "Read from the local database instead of SAM.gov")
	getCmd.Flags().Bool("json", false, "Output raw JSON")
	getCmd.Flags().Bool("yaml", false, "Output YAML")
	rootCmd.AddCommand(getCmd)
}
