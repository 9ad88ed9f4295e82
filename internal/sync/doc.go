// Package sync decides which date windows to fetch from SAM.gov on each run
// and keeps the local store fresh across runs.
//
// Overview
//
// Every run has two phases:
//
//	Incremental  [today-3, today]          always fetched first
//	     ↓
//	Backfill     [cursor-90, cursor] ...   repeated while budget remains,
//	                                       cursor moves backward each window
//	     ↓
//	Done         last_sync = today
//
// The backfill cursor is written to sync_state after every window, so a run
// that is interrupted, rate limited, or killed resumes at the next window
// rather than refetching from the beginning.
//
// Budget
//
// MaxAPICalls bounds the number of search requests a run may issue. A window
// can take more than one request, so backfill only starts another window
// while at least two calls remain. A rate limit at any point ends the run
// early; it is reported in the Summary and is never returned as an error.
//
// Cursor seeding
//
// When no cursor is stored yet, backfill starts from the earliest posted
// date already in the store, or from today-3 on an empty store. An explicit
// From date overrides both: backfill restarts at today-3 and stops once the
// cursor reaches From.
//
// Usage
//
//	pager := samgov.NewPager(client, logger)
//	s := sync.New(pager, st, logger)
//	summary, err := s.Run(ctx, sync.Options{MaxAPICalls: 10})
//	if err != nil {
//	    return err
//	}
//	if summary.RateLimited {
//	    // resumes from summary.BackfillCursor next run
//	}
//
// Dry run
//
// With DryRun set the scheduler performs no network calls and no writes. It
// estimates one call per backfill window and reports the cursor trajectory
// it would have followed.
package sync
