package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// DateFormat is the upstream query date layout.
const DateFormat = "01/02/2006"

// isoDate is how upstream emits postedDate in records.
const isoDate = "2006-01-02"

// parser only carries the English rules. The common slash-date rule reads
// DD/MM/YYYY and would silently accept a malformed MM/DD/YYYY.
var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	return w
}()

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func format(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate parses a cursor or stored posted date. MM/DD/YYYY and
// YYYY-MM-DD (optionally followed by a time) are accepted.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateFormat, s, loc); err == nil {
		return t, nil
	}
	if len(s) >= len(isoDate) {
		if t, err := time.ParseInLocation(isoDate, s[:len(isoDate)], loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date '%s': expected MM/DD/YYYY", s)
}

// ParseFloor parses a backfill floor. Besides the ParseDate layouts it
// accepts natural language such as "6 months ago" or "last week",
// resolved relative to now.
func ParseFloor(s string, now time.Time) (time.Time, error) {
	if t, err := ParseDate(s, now.Location()); err == nil {
		return t, nil
	}

	r, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': expected MM/DD/YYYY or a relative date", s)
	}
	return dateOf(r.Time), nil
}
