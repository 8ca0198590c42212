package orchestrator

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Init reconciles with state the backend already holds: it loads the file
// list, checks health, looks up the active job and starts the health monitor.
func (o *Orchestrator) Init() tea.Cmd {
	if o.closed {
		return nil
	}
	return tea.Batch(
		o.loadFiles(),
		o.checkHealth(),
		o.loadActiveJob(),
		o.startHealthMonitor(),
	)
}

func (o *Orchestrator) loadActiveJob() tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		job, err := o.api.GetActiveJob(ctx)
		return activeJobMsg{job: job, err: err}
	})
}

// handleActiveJob resumes polling for a queued or processing job. A job the
// user started meanwhile takes precedence.
func (o *Orchestrator) handleActiveJob(msg activeJobMsg) tea.Cmd {
	if msg.err != nil {
		o.log.Warn("failed to load active job", zap.Error(msg.err))
		return nil
	}
	if msg.job == nil || o.state.job != nil {
		return nil
	}

	job := Reconcile(nil, msg.job, OverrideNone)
	o.state.setJob(job)
	o.log.Info("found existing job", zap.String("job_id", job.JobID), zap.String("status", string(job.Status)))

	if !job.Status.IsActive() {
		return nil
	}
	return tea.Batch(o.setScraping(true), o.startPolling(job.JobID))
}

// Track follows an existing job by id without starting one. The headless
// watch command uses it. The job stays nil until the first poll answers.
func (o *Orchestrator) Track(jobID string) tea.Cmd {
	if o.closed || jobID == "" {
		return nil
	}
	o.state.setJob(nil)
	o.log.Info("tracking job", zap.String("job_id", jobID))
	return tea.Batch(o.setScraping(true), o.startPolling(jobID))
}
