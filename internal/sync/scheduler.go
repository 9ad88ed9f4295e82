package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govscout/govscout/internal/samgov"
	"github.com/govscout/govscout/internal/store"
)

const (
	// IncrementalDays is the width of the window fetched at the start of every run.
	IncrementalDays = 3
	// BackfillWindowDays is the width of one backfill window.
	BackfillWindowDays = 90
	// minBackfillBudget is the remaining budget needed to start a backfill window.
	minBackfillBudget = 2
)

// WindowFetcher fetches every page of one posted-date window. *samgov.Pager
// implements it.
type WindowFetcher interface {
	PaginateWindow(ctx context.Context, from, to string, onPage samgov.PageFunc) (*samgov.WindowResult, error)
}

// Store is the persistence the scheduler needs. *store.Store implements it.
type Store interface {
	UpsertResponse(ctx context.Context, resp *samgov.SearchResponse) error
	GetSyncState(ctx context.Context, key string) (string, bool, error)
	SetSyncState(ctx context.Context, key, value string) error
	EarliestPostedDate(ctx context.Context) (string, error)
	LogAPICall(ctx context.Context, e *store.APICallLogEntry) error
}

// Options are the per-run tunables.
type Options struct {
	// MaxAPICalls is the request budget for the run.
	MaxAPICalls int
	// DryRun plans windows without fetching or writing anything.
	DryRun bool
	// From is an explicit backfill floor (MM/DD/YYYY or relative, see
	// ParseFloor). Empty means resume from the stored cursor.
	From string
}

// Window is one planned or executed window fetch.
type Window struct {
	Context        string `json:"context" yaml:"context"`
	From           string `json:"from" yaml:"from"`
	To             string `json:"to" yaml:"to"`
	APICalls       int    `json:"api_calls" yaml:"api_calls"`
	RecordsFetched int    `json:"records_fetched" yaml:"records_fetched"`
	RateLimited    bool   `json:"rate_limited,omitempty" yaml:"rate_limited,omitempty"`
	Planned        bool   `json:"planned,omitempty" yaml:"planned,omitempty"`
}

// Summary reports what a run did.
type Summary struct {
	RunID            string   `json:"run_id" yaml:"run_id"`
	DryRun           bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	APICallsUsed     int      `json:"api_calls_used" yaml:"api_calls_used"`
	RecordsSynced    int      `json:"records_synced" yaml:"records_synced"`
	WindowsCompleted int      `json:"windows_completed" yaml:"windows_completed"`
	RateLimited      bool     `json:"rate_limited" yaml:"rate_limited"`
	BackfillCursor   string   `json:"backfill_cursor,omitempty" yaml:"backfill_cursor,omitempty"`
	Windows          []Window `json:"windows" yaml:"windows"`
}

// Scheduler runs the two-phase sync.
type Scheduler struct {
	fetcher WindowFetcher
	store   Store
	logger  *zap.Logger

	// Now returns the current time. Tests replace it with a fixed clock.
	Now func() time.Time
}

// New creates a Scheduler. If logger is nil, logging is disabled.
func New(fetcher WindowFetcher, st Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		fetcher: fetcher,
		store:   st,
		logger:  logger,
		Now:     time.Now,
	}
}

// run is the mutable state of one invocation.
type run struct {
	*Scheduler
	opts    Options
	today   time.Time
	stopped <-chan struct{}
	summary *Summary
	log     *zap.Logger
}

// Run performs one sync. A rate limit ends the run early and is reported in
// the Summary. Transport, upstream and decode failures abort the run and are
// returned together with the partial Summary; the cursor stays at the last
// completed window.
//
// Cancelling ctx never interrupts a window: fetches and store writes run on
// a context detached from it, bounded by the client's request timeout.
// Cancellation is checked between backfill windows and ends the run there,
// with last_sync still recorded.
func (s *Scheduler) Run(parent context.Context, opts Options) (*Summary, error) {
	ctx := context.WithoutCancel(parent)
	today := dateOf(s.Now())

	// Validate the floor before spending any budget.
	var floor *time.Time
	if opts.From != "" {
		f, err := ParseFloor(opts.From, today)
		if err != nil {
			return nil, err
		}
		floor = &f
	}

	runID := uuid.NewString()
	r := &run{
		Scheduler: s,
		opts:      opts,
		today:     today,
		stopped:   parent.Done(),
		summary:   &Summary{RunID: runID, DryRun: opts.DryRun},
		log:       s.logger.With(zap.String("run_id", runID)),
	}

	stop, err := r.incremental(ctx)
	if err != nil {
		return r.summary, err
	}
	if stop {
		return r.finish(ctx, "")
	}

	planned, err := r.backfill(ctx, floor)
	if err != nil {
		return r.summary, err
	}
	return r.finish(ctx, planned)
}

// incremental fetches [today-3, today]. stop is true when the run must end
// here because upstream rate limited it.
func (r *run) incremental(ctx context.Context) (stop bool, err error) {
	from := format(r.today.AddDate(0, 0, -IncrementalDays))
	to := format(r.today)

	r.log.Info("incremental sync", zap.String("from", from), zap.String("to", to))

	if r.opts.DryRun {
		r.summary.Windows = append(r.summary.Windows, Window{
			Context: store.ContextIncremental,
			From:    from,
			To:      to,
			Planned: true,
		})
		return false, nil
	}

	w, err := r.fetch(ctx, store.ContextIncremental, from, to)
	if err != nil {
		return true, err
	}

	if w.RateLimited {
		r.log.Warn("rate limited during incremental sync, stopping")
		return true, nil
	}
	return false, nil
}

// backfill walks windows backward from the resolved cursor while budget
// remains. In dry-run it returns the planned final cursor.
func (r *run) backfill(ctx context.Context, floor *time.Time) (planned string, err error) {
	remaining := r.opts.MaxAPICalls - r.summary.APICallsUsed
	if remaining < minBackfillBudget {
		r.log.Info("no API budget remaining for backfill", zap.Int("remaining", remaining))
		return "", nil
	}
	r.log.Info("backfill", zap.Int("remaining", remaining))

	cursor, err := r.seedCursor(ctx, floor != nil)
	if err != nil {
		return "", err
	}

	for r.summary.APICallsUsed+minBackfillBudget <= r.opts.MaxAPICalls {
		if r.cancelled() {
			r.log.Info("run cancelled, stopping backfill", zap.String("cursor", format(cursor)))
			break
		}
		if floor != nil && !cursor.After(*floor) {
			r.log.Info("reached backfill floor, stopping", zap.String("floor", format(*floor)))
			break
		}

		windowFrom := cursor.AddDate(0, 0, -BackfillWindowDays)
		from, to := format(windowFrom), format(cursor)

		if r.opts.DryRun {
			r.log.Info("dry-run: would fetch backfill window", zap.String("from", from), zap.String("to", to))
			r.summary.Windows = append(r.summary.Windows, Window{
				Context:  store.ContextBackfill,
				From:     from,
				To:       to,
				APICalls: 1,
				Planned:  true,
			})
			r.summary.WindowsCompleted++
			r.summary.APICallsUsed++
			cursor = windowFrom
			planned = from
			continue
		}

		w, err := r.fetch(ctx, store.ContextBackfill, from, to)
		if err != nil {
			return "", err
		}

		// The window is complete or partially covered up to the 429. Either
		// way the next run starts from the next older window.
		cursor = windowFrom
		if err := r.store.SetSyncState(ctx, store.KeyBackfillCursor, from); err != nil {
			return "", fmt.Errorf("failed to persist backfill cursor: %w", err)
		}

		if w.RateLimited {
			r.log.Warn("rate limited, stopping backfill")
			break
		}
	}

	return planned, nil
}

// cancelled reports whether the caller asked the run to stop.
func (r *run) cancelled() bool {
	select {
	case <-r.stopped:
		return true
	default:
		return false
	}
}

// seedCursor resolves where backfill starts: today-3 when a floor was given,
// else the stored cursor, else the earliest stored posted date, else today-3.
func (r *run) seedCursor(ctx context.Context, override bool) (time.Time, error) {
	fallback := r.today.AddDate(0, 0, -IncrementalDays)
	if override {
		r.log.Info("using backfill floor override", zap.String("from", r.opts.From))
		return fallback, nil
	}

	stored, ok, err := r.store.GetSyncState(ctx, store.KeyBackfillCursor)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return ParseDate(stored, r.today.Location())
	}

	earliest, err := r.store.EarliestPostedDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if earliest != "" {
		return ParseDate(earliest, r.today.Location())
	}
	return fallback, nil
}

// fetch runs one window, persisting every page, and records it in the call
// log. Per-page persistence and call-log failures are logged and swallowed.
func (r *run) fetch(ctx context.Context, tag, from, to string) (*Window, error) {
	res, fetchErr := r.fetcher.PaginateWindow(ctx, from, to, func(page *samgov.SearchResponse) {
		if err := r.store.UpsertResponse(ctx, page); err != nil {
			r.log.Warn("failed to persist page", zap.String("context", tag), zap.Error(err))
		}
	})
	if res == nil {
		res = &samgov.WindowResult{}
	}

	entry := &store.APICallLogEntry{
		RunID:          r.summary.RunID,
		Context:        tag,
		WindowFrom:     from,
		WindowTo:       to,
		APICalls:       res.APICalls,
		RecordsFetched: res.RecordsFetched,
		RateLimited:    res.RateLimited,
	}
	if fetchErr != nil {
		entry.ErrorMessage = fetchErr.Error()
	}
	if err := r.store.LogAPICall(ctx, entry); err != nil {
		r.log.Warn("failed to log API call", zap.Error(err))
	}

	r.summary.APICallsUsed += res.APICalls
	r.summary.RecordsSynced += res.RecordsFetched

	if fetchErr != nil {
		r.log.Error("window fetch failed",
			zap.String("context", tag),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(fetchErr),
		)
		return nil, fmt.Errorf("%s window %s to %s: %w", tag, from, to, fetchErr)
	}

	w := Window{
		Context:        tag,
		From:           from,
		To:             to,
		APICalls:       res.APICalls,
		RecordsFetched: res.RecordsFetched,
		RateLimited:    res.RateLimited,
	}
	r.summary.Windows = append(r.summary.Windows, w)
	r.summary.WindowsCompleted++
	if res.RateLimited {
		r.summary.RateLimited = true
	}

	r.log.Info("window fetched",
		zap.String("context", tag),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("api_calls", res.APICalls),
		zap.Int("records", res.RecordsFetched),
	)
	return &w, nil
}

// finish writes last_sync (unless dry-run) and fills in the final cursor.
func (r *run) finish(ctx context.Context, planned string) (*Summary, error) {
	if r.opts.DryRun {
		r.summary.BackfillCursor = planned
		return r.summary, nil
	}

	if err := r.store.SetSyncState(ctx, store.KeyLastSync, format(r.today)); err != nil {
		return r.summary, fmt.Errorf("failed to record last sync: %w", err)
	}

	cursor, _, err := r.store.GetSyncState(ctx, store.KeyBackfillCursor)
	if err != nil {
		return r.summary, err
	}
	r.summary.BackfillCursor = cursor
	return r.summary, nil
}
