// Package display renders opportunities, sync results and store status for
// the terminal, and as JSON or YAML for scripts.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/govscout/govscout/internal/samgov"
	"github.com/govscout/govscout/internal/ui"
)

const (
	titleWidth = 50
	orgWidth   = 40

	// descriptionLines caps the description shown in the detail view.
	descriptionLines = 30
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// SearchResults prints one page of results as a table. saved is the number
// of records written to the store; pass -1 to leave it out.
func SearchResults(w io.Writer, resp *samgov.SearchResponse, saved int) {
	if resp.Len() == 0 {
		fmt.Fprintln(w, "No opportunities found.")
		return
	}

	if saved >= 0 {
		fmt.Fprintf(w, "Showing first %d of %d total results (%d saved to database)\n\n",
			resp.Len(), resp.Total(), saved)
	} else {
		fmt.Fprintf(w, "Showing %d of %d results\n\n", resp.Len(), resp.Total())
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Notice ID", "Title", "Type", "Posted", "Organization").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range resp.OpportunitiesData {
		opp := &resp.OpportunitiesData[i]
		t.Row(
			orDash(opp.NoticeID),
			Truncate(orDash(opp.Title), titleWidth),
			orDash(opp.BaseType),
			orDash(opp.PostedDate),
			Truncate(orDash(firstOf(opp.FullParentPathName, opp.Department, opp.SubTier)), orgWidth),
		)
	}
	fmt.Fprintln(w, t.String())
}

// Opportunity prints the detail view of one record. Sections with no
// values are omitted.
func Opportunity(w io.Writer, opp *samgov.Opportunity) {
	d := &detail{w: w}

	fmt.Fprintln(w)
	title := "Untitled"
	if opp.Title != nil && *opp.Title != "" {
		title = *opp.Title
	}
	fmt.Fprintf(w, "  %s\n\n", ui.RenderAccent("═══ "+title+" ═══"))

	d.field("Notice ID:", opp.NoticeID)
	d.field("Solicitation #:", opp.SolicitationNumber)
	d.field("Type:", opp.Type)
	d.field("Base Type:", opp.BaseType)
	d.field("Active:", opp.Active)
	fmt.Fprintln(w)

	d.section("Organization")
	d.field("Organization:", opp.FullParentPathName)
	d.field("Department:", opp.Department)
	d.field("Sub-tier:", opp.SubTier)
	d.field("Office:", opp.Office)
	fmt.Fprintln(w)

	d.section("Dates")
	d.field("Posted:", opp.PostedDate)
	d.field("Response Deadline:", opp.ResponseDeadline)
	d.field("Archive Date:", opp.ArchiveDate)
	fmt.Fprintln(w)

	d.section("Classification")
	d.field("NAICS Code:", opp.NAICSCode)
	d.field("Classification Code:", opp.ClassificationCode)
	d.field("Set-Aside:", opp.SetAside)
	d.field("Set-Aside Desc:", opp.SetAsideDescription)
	fmt.Fprintln(w)

	if pop := opp.PlaceOfPerformance; pop != nil {
		d.section("Place of Performance")
		if pop.City != nil {
			d.field("City:", pop.City.Name)
		}
		if pop.State != nil {
			d.field("State:", pop.State.Name)
		}
		if pop.Country != nil {
			d.field("Country:", pop.Country.Name)
		}
		d.field("ZIP:", pop.Zip)
		fmt.Fprintln(w)
	}

	if len(opp.PointOfContact) > 0 {
		d.section("Point(s) of Contact")
		for _, poc := range opp.PointOfContact {
			if poc.FullName != nil {
				fmt.Fprintf(w, "    %s %s\n", samgov.Value(poc.Type), *poc.FullName)
			}
			if poc.Email != nil {
				fmt.Fprintf(w, "      Email: %s\n", *poc.Email)
			}
			if poc.Phone != nil {
				fmt.Fprintf(w, "      Phone: %s\n", *poc.Phone)
			}
		}
		fmt.Fprintln(w)
	}

	if a := opp.Award; a != nil {
		d.section("Award")
		d.field("Amount:", a.Amount)
		d.field("Date:", a.Date)
		d.field("Number:", a.Number)
		if a.Awardee != nil {
			d.field("Awardee:", a.Awardee.Name)
			d.field("UEI:", a.Awardee.UEISAM)
		}
		fmt.Fprintln(w)
	}

	if opp.UILink != nil {
		d.section("Links")
		fmt.Fprintf(w, "  SAM.gov:  %s\n", *opp.UILink)
	}
	for _, l := range opp.ResourceLinks {
		fmt.Fprintf(w, "  Resource: %s\n", l)
	}

	if opp.Description != nil {
		fmt.Fprintln(w)
		d.section("Description")
		lines := strings.Split(strings.TrimSuffix(StripHTML(*opp.Description), "\n"), "\n")
		for i, line := range lines {
			if i == descriptionLines {
				fmt.Fprintf(w, "  %s\n", ui.RenderMuted("... (truncated)"))
				break
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintln(w)
}

type detail struct {
	w io.Writer
}

func (d *detail) section(name string) {
	fmt.Fprintf(d.w, "  %s\n", ui.RenderBold("── "+name+" ──"))
}

func (d *detail) field(label string, value *string) {
	if value == nil {
		return
	}
	fmt.Fprintf(d.w, "  %-22s %s\n", label, *value)
}
