// Package orchestrator tracks one remote scrape job from the client side.
//
// The Orchestrator follows the Bubble Tea update model: Update runs on a
// single goroutine and returns commands that perform network calls and
// schedule ticks off that goroutine. Their results come back as messages.
// Every periodic task (status poller, health monitor, file refresher and the
// termination confirmation loop) owns a handle whose generation is checked
// when its messages arrive, so a stopped task can never touch state again.
package orchestrator

import (
	"context"
	"time"

	"scrape-dash-go/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// API is the backend contract the orchestrator consumes.
// *scraper.Client implements it.
type API interface {
	StartScrape(ctx context.Context, queries []string, location string) (*models.ScrapeStarted, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.Job, error)
	GetActiveJob(ctx context.Context) (*models.Job, error)
	TerminateJob(ctx context.Context, jobID string) (*models.Ack, error)
	ClearJobStatus(ctx context.Context, jobID string) error
	ListFiles(ctx context.Context) ([]models.GeneratedFile, error)
	DeleteFile(ctx context.Context, filename string) error
	DeleteAllFiles(ctx context.Context) (*models.Ack, error)
	CheckHealth(ctx context.Context) (bool, error)
}

// Options tunes the periodic tasks. Zero values fall back to DefaultOptions.
type Options struct {
	PollInterval          time.Duration
	HealthInterval        time.Duration
	FilesInterval         time.Duration
	TerminateConfirmDelay time.Duration
	Location              string
	Logger                *zap.Logger
	Now                   func() time.Time
}

// DefaultOptions returns the standard cadence: 2s polls, 5s health and file
// refresh, 1s between termination confirmation checks.
func DefaultOptions() Options {
	return Options{
		PollInterval:          2 * time.Second,
		HealthInterval:        5 * time.Second,
		FilesInterval:         5 * time.Second,
		TerminateConfirmDelay: time.Second,
		Now:                   time.Now,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.HealthInterval <= 0 {
		o.HealthInterval = def.HealthInterval
	}
	if o.FilesInterval <= 0 {
		o.FilesInterval = def.FilesInterval
	}
	if o.TerminateConfirmDelay <= 0 {
		o.TerminateConfirmDelay = def.TerminateConfirmDelay
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Orchestrator owns the job state and every timer that mutates it.
type Orchestrator struct {
	api      API
	sched    Scheduler
	notifier Notifier
	opts     Options
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state   store
	pending Confirmation
	starts  uint64

	poller  handle
	health  handle
	files   handle
	confirm handle

	closed bool
}

// New builds an Orchestrator. A nil scheduler uses tea.Tick and a nil
// notifier logs through the configured logger.
func New(api API, sched Scheduler, notifier Notifier, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	if sched == nil {
		sched = TeaScheduler{}
	}
	if notifier == nil {
		notifier = LogNotifier{Log: opts.Logger}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		api:      api,
		sched:    sched,
		notifier: notifier,
		opts:     opts,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		poller:   handle{name: "poller"},
		health:   handle{name: "health"},
		files:    handle{name: "files"},
		confirm:  handle{name: "terminate-confirm"},
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	snap := o.state.snapshot()
	snap.Pending = o.pending
	snap.Polling = o.poller.active
	return snap
}

// Update applies one message. Messages that do not belong to the
// orchestrator are ignored, so callers can forward everything.
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	if o.closed {
		return nil
	}

	switch msg := msg.(type) {
	case pollTickMsg:
		return o.handlePollTick(msg)
	case statusFetchedMsg:
		return o.handleStatusFetched(msg)
	case healthTickMsg:
		return o.handleHealthTick(msg)
	case healthCheckedMsg:
		return o.handleHealthChecked(msg)
	case filesTickMsg:
		return o.handleFilesTick(msg)
	case filesFetchedMsg:
		return o.handleFilesFetched(msg)
	case activeJobMsg:
		return o.handleActiveJob(msg)
	case startResultMsg:
		return o.handleStartResult(msg)
	case terminateResultMsg:
		return o.handleTerminateResult(msg)
	case confirmTickMsg:
		return o.handleConfirmTick(msg)
	case confirmFetchedMsg:
		return o.handleConfirmFetched(msg)
	case clearResultMsg:
		return o.handleClearResult(msg)
	case deleteFileResultMsg:
		return o.handleDeleteFileResult(msg)
	case deleteAllResultMsg:
		return o.handleDeleteAllResult(msg)
	}
	return nil
}

// StartScrape submits queries as a new job. Callers pass trimmed, non-empty
// queries; an empty slice or a start while a job is running does nothing.
func (o *Orchestrator) StartScrape(queries []string) tea.Cmd {
	if o.closed || len(queries) == 0 {
		return nil
	}
	if o.state.scraping {
		o.log.Debug("start ignored, job already running", zap.String("job_id", o.state.jobID()))
		return nil
	}

	queries = append([]string(nil), queries...)
	location := o.opts.Location
	o.starts++
	gen := o.starts

	o.log.Info("starting scrape", zap.Int("queries", len(queries)), zap.String("location", location))
	return tea.Batch(
		o.setScraping(true),
		o.call(func(ctx context.Context) tea.Msg {
			started, err := o.api.StartScrape(ctx, queries, location)
			return startResultMsg{gen: gen, queries: queries, started: started, err: err}
		}),
	)
}

// handleStartResult drops results of starts superseded by a clear. A job the
// backend created anyway is cleared there on a best-effort basis.
func (o *Orchestrator) handleStartResult(msg startResultMsg) tea.Cmd {
	if msg.gen != o.starts {
		if msg.err != nil || msg.started == nil {
			o.log.Debug("stale start result dropped", zap.Error(msg.err))
			return nil
		}
		jobID := msg.started.JobID
		o.log.Info("clearing job started before clear", zap.String("job_id", jobID))
		return o.call(func(ctx context.Context) tea.Msg {
			return clearResultMsg{jobID: jobID, err: o.api.ClearJobStatus(ctx, jobID)}
		})
	}
	if msg.err != nil {
		o.log.Error("failed to start scrape", zap.Error(msg.err))
		o.state.health = HealthDown
		o.notify("Failed to start scraping. Is the backend running?", LevelAlert)
		return o.setScraping(false)
	}

	job := models.NewQueuedJob(msg.started.JobID, msg.queries, o.opts.Now())
	job.Location = o.opts.Location
	o.state.setJob(job)

	o.log.Info("scrape started", zap.String("job_id", job.JobID), zap.Int("total_queries", job.TotalQueries))
	return o.startPolling(job.JobID)
}

// Confirm answers the pending confirmation. A negative answer drops it
// without any network effect.
func (o *Orchestrator) Confirm(yes bool) tea.Cmd {
	c := o.pending
	o.pending = Confirmation{}
	if o.closed || !yes || !c.Active() {
		return nil
	}

	switch c.Kind {
	case ConfirmTerminate:
		return o.confirmTerminate(c)
	case ConfirmClear:
		return o.confirmClear()
	case ConfirmDeleteFile:
		return o.confirmDeleteFile(c.Target)
	case ConfirmDeleteAllFiles:
		return o.confirmDeleteAllFiles()
	}
	return nil
}

// Shutdown cancels every periodic task and in-flight request. Update
// ignores all messages afterwards.
func (o *Orchestrator) Shutdown() {
	if o.closed {
		return
	}
	o.closed = true
	o.stopPolling()
	o.confirm.stop()
	o.health.stop()
	o.files.stop()
	o.cancel()
	o.log.Debug("orchestrator shut down")
}

// setScraping flips the scraping flag and starts or stops the file
// refresher with it. Setting the current value is a no-op.
func (o *Orchestrator) setScraping(scraping bool) tea.Cmd {
	if o.state.scraping == scraping {
		return nil
	}
	o.state.scraping = scraping
	if scraping {
		return o.startFileRefresher()
	}
	o.stopFileRefresher()
	return nil
}

// finishJob runs the terminal-status path: stop polling, clear the scraping
// flag and refresh the files the job produced. Safe to repeat.
func (o *Orchestrator) finishJob() tea.Cmd {
	o.stopPolling()
	return tea.Batch(o.setScraping(false), o.loadFiles())
}

func (o *Orchestrator) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	ctx := o.ctx
	return func() tea.Msg {
		return fn(ctx)
	}
}

func (o *Orchestrator) notify(message string, level Level) {
	o.notifier.Notify(message, level)
}
