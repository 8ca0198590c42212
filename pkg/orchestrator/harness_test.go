package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"scrape-dash-go/pkg/models"
	"scrape-dash-go/pkg/scraper"

	tea "github.com/charmbracelet/bubbletea"
)

var errBackendDown = &scraper.APIError{Type: scraper.ErrorTypeServiceUnavailable, StatusCode: http.StatusServiceUnavailable, Message: "Service unavailable"}

func notFound() error {
	return &scraper.APIError{Type: scraper.ErrorTypeNotFound, StatusCode: http.StatusNotFound, Message: "Job not found"}
}

type scheduled struct {
	d   time.Duration
	msg tea.Msg
}

// fakeScheduler records ticks instead of sleeping. Tests deliver them with fire.
type fakeScheduler struct {
	pending []scheduled
}

func (f *fakeScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		f.pending = append(f.pending, scheduled{d: d, msg: msg})
		return nil
	}
}

type statusReply struct {
	job *models.Job
	err error
}

// fakeAPI answers synchronously and counts calls per method.
type fakeAPI struct {
	calls map[string]int

	startID  string
	startErr error

	statuses   []statusReply
	lastStatus statusReply

	active    *models.Job
	activeErr error

	terminateErr error
	clearErr     error

	files    []models.GeneratedFile
	filesErr error

	healthErr error

	deleteErr    error
	deleteAllErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), startID: "job-1"}
}

func (f *fakeAPI) queueStatus(job *models.Job, err error) {
	f.statuses = append(f.statuses, statusReply{job: job, err: err})
}

func (f *fakeAPI) StartScrape(ctx context.Context, queries []string, location string) (*models.ScrapeStarted, error) {
	f.calls["start"]++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &models.ScrapeStarted{JobID: f.startID, Message: "Scraping started", TotalQueries: len(queries)}, nil
}

// GetJobStatus pops queued replies and repeats the last one when the queue is empty.
func (f *fakeAPI) GetJobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	f.calls["status"]++
	if len(f.statuses) > 0 {
		f.lastStatus = f.statuses[0]
		f.statuses = f.statuses[1:]
	}
	if f.lastStatus.job == nil && f.lastStatus.err == nil {
		return nil, errors.New("no status queued")
	}
	return f.lastStatus.job.Clone(), f.lastStatus.err
}

func (f *fakeAPI) GetActiveJob(ctx context.Context) (*models.Job, error) {
	f.calls["active"]++
	return f.active.Clone(), f.activeErr
}

func (f *fakeAPI) TerminateJob(ctx context.Context, jobID string) (*models.Ack, error) {
	f.calls["terminate"]++
	if f.terminateErr != nil {
		return nil, f.terminateErr
	}
	return &models.Ack{Message: "Job termination requested", JobID: jobID}, nil
}

func (f *fakeAPI) ClearJobStatus(ctx context.Context, jobID string) error {
	f.calls["clear"]++
	return f.clearErr
}

func (f *fakeAPI) ListFiles(ctx context.Context) ([]models.GeneratedFile, error) {
	f.calls["files"]++
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files, nil
}

func (f *fakeAPI) DeleteFile(ctx context.Context, filename string) error {
	f.calls["delete"]++
	return f.deleteErr
}

func (f *fakeAPI) DeleteAllFiles(ctx context.Context) (*models.Ack, error) {
	f.calls["delete-all"]++
	if f.deleteAllErr != nil {
		return nil, f.deleteAllErr
	}
	return &models.Ack{Message: "Deleted 2 CSV files"}, nil
}

func (f *fakeAPI) CheckHealth(ctx context.Context) (bool, error) {
	f.calls["health"]++
	if f.healthErr != nil {
		return false, f.healthErr
	}
	return true, nil
}

type notification struct {
	message string
	level   Level
}

type recordingNotifier struct {
	got []notification
}

func (r *recordingNotifier) Notify(message string, level Level) {
	r.got = append(r.got, notification{message: message, level: level})
}

func (r *recordingNotifier) last() notification {
	if len(r.got) == 0 {
		return notification{}
	}
	return r.got[len(r.got)-1]
}

// harness runs commands synchronously. Messages produced by commands wait
// in inbox until step or drain delivers them, so tests can observe state
// between a request and its response.
type harness struct {
	t        *testing.T
	o        *Orchestrator
	api      *fakeAPI
	sched    *fakeScheduler
	notifier *recordingNotifier
	inbox    []tea.Msg
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		api:      newFakeAPI(),
		sched:    &fakeScheduler{},
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.o = New(h.api, h.sched, h.notifier, Options{
		Location: "Austin, TX",
		Now:      func() time.Time { return h.now },
	})
	t.Cleanup(h.o.Shutdown)
	return h
}

// exec runs cmd and queues its messages.
func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.exec(c)
		}
	default:
		h.inbox = append(h.inbox, msg)
	}
}

// step delivers the oldest queued message.
func (h *harness) step() bool {
	if len(h.inbox) == 0 {
		return false
	}
	msg := h.inbox[0]
	h.inbox = h.inbox[1:]
	h.exec(h.o.Update(msg))
	return true
}

func (h *harness) drain() {
	for h.step() {
	}
}

// do runs cmd and every message that follows from it.
func (h *harness) do(cmd tea.Cmd) {
	h.exec(cmd)
	h.drain()
}

// fire delivers every pending tick of the same type as sample and drains
// the results. It returns how many ticks were delivered.
func (h *harness) fire(sample tea.Msg) int {
	var keep []scheduled
	var due []tea.Msg
	for _, s := range h.sched.pending {
		if sameType(s.msg, sample) {
			due = append(due, s.msg)
		} else {
			keep = append(keep, s)
		}
	}
	h.sched.pending = keep
	for _, msg := range due {
		h.exec(h.o.Update(msg))
	}
	h.drain()
	return len(due)
}

func (h *harness) pendingCount(sample tea.Msg) int {
	n := 0
	for _, s := range h.sched.pending {
		if sameType(s.msg, sample) {
			n++
		}
	}
	return n
}

func sameType(a, b tea.Msg) bool {
	switch a.(type) {
	case pollTickMsg:
		_, ok := b.(pollTickMsg)
		return ok
	case healthTickMsg:
		_, ok := b.(healthTickMsg)
		return ok
	case filesTickMsg:
		_, ok := b.(filesTickMsg)
		return ok
	case confirmTickMsg:
		_, ok := b.(confirmTickMsg)
		return ok
	}
	return false
}

func jobWith(id string, status models.JobStatus, queries []string, completed int) *models.Job {
	return &models.Job{
		JobID:            id,
		Status:           status,
		Queries:          queries,
		TotalQueries:     len(queries),
		CompletedQueries: completed,
	}
}

// startProcessing starts a job and lands one processing poll.
func (h *harness) startProcessing(queries ...string) {
	h.t.Helper()
	h.api.queueStatus(jobWith("job-1", models.JobStatusProcessing, queries, 0), nil)
	h.do(h.o.StartScrape(queries))
}
