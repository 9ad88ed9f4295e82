// Package daemon runs the sync scheduler repeatedly on a cron schedule.
//
// The daemon:
// 1. Optionally runs one sync immediately on start
// 2. Runs a sync on every schedule tick, skipping ticks while a run is in flight
// 3. Logs each run's summary and keeps simple counters
// 4. Stops on context cancellation, waiting for an in-flight run to finish
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	govsync "github.com/govscout/govscout/internal/sync"
)

// Runner performs one sync. *sync.Scheduler implements it.
type Runner interface {
	Run(ctx context.Context, opts govsync.Options) (*govsync.Summary, error)
}

// Config holds configuration for the daemon.
type Config struct {
	// Schedule is a standard 5-field cron spec or a descriptor such as
	// "@every 6h" or "@daily".
	Schedule string

	// Options are passed to every run.
	Options govsync.Options

	// RunOnStart runs one sync before the first tick.
	RunOnStart bool

	// Logger for daemon activity. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Schedule:   "@every 6h",
		Options:    govsync.Options{MaxAPICalls: 10},
		RunOnStart: true,
	}
}

// Stats are counters over the daemon's lifetime.
type Stats struct {
	Runs        int
	Failures    int
	RateLimited int
	LastRun     time.Time
	LastSummary *govsync.Summary
	LastError   error
}

// Daemon drives scheduled sync runs.
type Daemon struct {
	runner Runner
	config *Config
	logger *zap.Logger

	cron *cron.Cron
	job  cron.Job

	ctxMu sync.Mutex
	ctx   context.Context

	statsMu sync.Mutex
	stats   Stats
}

// New creates a daemon. The schedule is validated here.
func New(runner Runner, config *Config) (*Daemon, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Schedule == "" {
		return nil, fmt.Errorf("schedule cannot be empty")
	}
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Daemon{
		runner: runner,
		config: config,
		logger: logger,
		ctx:    context.Background(),
	}

	cl := cronLogger{logger.Sugar()}
	d.cron = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	d.job = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(d.tick))

	return d, nil
}

// Start blocks until ctx is cancelled, running syncs on the schedule. A run
// in flight at cancellation finishes its current window and records its
// progress before Start returns.
func (d *Daemon) Start(ctx context.Context) error {
	d.ctxMu.Lock()
	d.ctx = ctx
	d.ctxMu.Unlock()

	if _, err := d.cron.AddJob(d.config.Schedule, d.job); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	d.logger.Info("starting daemon", zap.String("schedule", d.config.Schedule))

	if d.config.RunOnStart {
		d.job.Run()
	}

	d.cron.Start()
	<-ctx.Done()
	return d.Stop()
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (d *Daemon) Stop() error {
	d.logger.Info("stopping daemon")
	<-d.cron.Stop().Done()
	d.logger.Info("daemon stopped")
	return nil
}

// RunOnce performs one sync immediately and records it in Stats.
func (d *Daemon) RunOnce(ctx context.Context) (*govsync.Summary, error) {
	start := time.Now()
	summary, err := d.runner.Run(ctx, d.config.Options)

	d.statsMu.Lock()
	d.stats.Runs++
	d.stats.LastRun = start
	d.stats.LastSummary = summary
	d.stats.LastError = err
	if err != nil {
		d.stats.Failures++
	}
	if summary != nil && summary.RateLimited {
		d.stats.RateLimited++
	}
	d.statsMu.Unlock()

	if err != nil {
		d.logger.Error("sync run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return summary, err
	}

	d.logger.Info("sync run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("api_calls", summary.APICallsUsed),
		zap.Int("records", summary.RecordsSynced),
		zap.Int("windows", summary.WindowsCompleted),
		zap.Bool("rate_limited", summary.RateLimited),
		zap.String("backfill_cursor", summary.BackfillCursor),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

// Stats returns a snapshot of the counters.
func (d *Daemon) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

func (d *Daemon) tick() {
	d.ctxMu.Lock()
	ctx := d.ctx
	d.ctxMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	_, _ = d.RunOnce(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
