package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govscout/govscout/internal/display"
	"github.com/govscout/govscout/internal/samgov"
	govsync "github.com/govscout/govscout/internal/sync"
)

// defaultSearchDays is the posted-date window used when --from is omitted.
const defaultSearchDays = 30

var searchCmd = &cobra.Command{
	Use:     "search",
	GroupID: "query",
	Short:   "Search for contract opportunities",
	Long: `Search SAM.gov for contract opportunities.

Without --from/--to the search covers notices posted in the last 30 days.
Every result is saved to the local database.

Examples:
  govscout search --naics 541512 --state VA
  govscout search --ptype o --set-aside SBA --limit 50
  govscout search --title "cloud" --all     # fetch every page
  govscout types                            # list --ptype and --set-aside codes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		limit, _ := flags.GetInt("limit")
		offset, _ := flags.GetInt("offset")
		all, _ := flags.GetBool("all")
		asJSON, _ := flags.GetBool("json")
		asYAML, _ := flags.GetBool("yaml")

		if limit < 1 || limit > samgov.PageSize {
			return fmt.Errorf("--limit must be between 1 and %d", samgov.PageSize)
		}
		if offset < 0 {
			return fmt.Errorf("--offset cannot be negative")
		}
		format, err := display.FormatFromFlags(asJSON, asYAML)
		if err != nil {
			return err
		}

		now := time.Now()
		from, err := dateFlag(cmd, "from", now.AddDate(0, 0, -defaultSearchDays))
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to", now)
		if err != nil {
			return err
		}

		params := samgov.SearchParams{
			Limit:      limit,
			Offset:     offset,
			PostedFrom: from,
			PostedTo:   to,
		}
		params.Title, _ = flags.GetString("title")
		params.PType, _ = flags.GetString("ptype")
		params.NAICS, _ = flags.GetString("naics")
		params.State, _ = flags.GetString("state")
		params.SetAside, _ = flags.GetString("set-aside")

		client, err := newClient()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if !all {
			resp, err := client.Search(ctx, params)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if err := s.UpsertResponse(ctx, resp); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
			if format != display.Text {
				return display.Encode(os.Stdout, format, resp)
			}
			display.SearchResults(os.Stdout, resp, -1)
			return nil
		}

		saved := 0
		pager := samgov.NewPager(client, logger)
		first, fetched, err := pager.PaginateAll(ctx, params, func(page *samgov.SearchResponse) {
			if err := s.UpsertResponse(ctx, page); err != nil {
				logger.Warn("failed to save page", zap.Error(err))
				return
			}
			saved += page.Len()
		})
		if err != nil {
			if saved > 0 {
				fmt.Fprintf(os.Stderr, "%d of %d fetched records were saved before the failure\n", saved, fetched)
			}
			return fmt.Errorf("search failed: %w", err)
		}
		if format != display.Text {
			return display.Encode(os.Stdout, format, first)
		}
		display.SearchResults(os.Stdout, first, saved)
		return nil
	},
}

// dateFlag returns the named flag as MM/DD/YYYY, or def when unset. ISO
// dates are accepted and converted.
func dateFlag(cmd *cobra.Command, name string, def time.Time) (string, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return def.Format(govsync.DateFormat), nil
	}
	t, err := govsync.ParseDate(raw, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t.Format(govsync.DateFormat), nil
}

func init() {
	flags := searchCmd.Flags()
	flags.IntP("limit", "l", 10, "Number of results (1-1000)")
	flags.StringP("title", "t", "", "Filter by title keyword")
	flags.StringP("ptype", "p", "", "Opportunity type code (o,p,k,r,s,a,u,g,i)")
	flags.StringP("naics", "n", "", "NAICS code")
	flags.StringP("state", "s", "", "Place of performance state code (e.g. CA)")
	flags.String("set-aside", "", "Set-aside type code")
	flags.String("from", "", "Posted from date (MM/DD/YYYY)")
	flags.String("to", "", "Posted to date (MM/DD/YYYY)")
	flags.Int("offset", 0, "Pagination offset")
	flags.Bool("all", false, "Fetch every page of results")
	flags.Bool("json", false, "Output raw JSON")
	flags.Bool("yaml", false, "Output YAML")
	rootCmd.AddCommand(searchCmd)
}
