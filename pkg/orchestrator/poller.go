package orchestrator

import (
	"context"

	"scrape-dash-go/pkg/models"
	"scrape-dash-go/pkg/scraper"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// startPolling replaces any running poller with one bound to jobID. It
// fetches immediately and then on every PollInterval tick.
func (o *Orchestrator) startPolling(jobID string) tea.Cmd {
	o.stopPolling()
	gen := o.poller.start(jobID)
	o.log.Debug("polling started", zap.String("job_id", jobID), zap.Uint64("gen", gen))

	return tea.Batch(
		o.fetchStatus(gen, jobID),
		o.sched.After(o.opts.PollInterval, pollTickMsg{gen: gen}),
	)
}

// stopPolling is idempotent.
func (o *Orchestrator) stopPolling() {
	jobID := o.poller.jobID
	if o.poller.stop() {
		o.log.Debug("polling stopped", zap.String("job_id", jobID))
	}
}

func (o *Orchestrator) fetchStatus(gen uint64, jobID string) tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		job, err := o.api.GetJobStatus(ctx, jobID)
		return statusFetchedMsg{gen: gen, jobID: jobID, job: job, err: err}
	})
}

func (o *Orchestrator) handlePollTick(msg pollTickMsg) tea.Cmd {
	if !o.poller.live(msg.gen) {
		return nil
	}
	return tea.Batch(
		o.fetchStatus(msg.gen, o.poller.jobID),
		o.sched.After(o.opts.PollInterval, pollTickMsg{gen: msg.gen}),
	)
}

func (o *Orchestrator) handleStatusFetched(msg statusFetchedMsg) tea.Cmd {
	if !o.poller.live(msg.gen) || msg.jobID != o.poller.jobID {
		return nil
	}

	if msg.err != nil {
		if scraper.IsNotFound(msg.err) {
			o.log.Warn("job lost", zap.String("job_id", msg.jobID))
			local := o.state.job
			if local == nil {
				local = &models.Job{JobID: msg.jobID}
			}
			o.state.setJob(Reconcile(local, nil, OverrideJobLost))
			o.stopPolling()
			return o.setScraping(false)
		}
		o.log.Debug("poll failed", zap.String("job_id", msg.jobID), zap.Error(msg.err))
		o.state.health = HealthDown
		return nil
	}
	if msg.job == nil {
		return nil
	}

	o.state.setJob(Reconcile(o.state.job, msg.job, OverrideNone))
	o.state.health = HealthUp

	if msg.job.Status.IsTerminal() {
		o.log.Info("job finished",
			zap.String("job_id", msg.jobID),
			zap.String("status", string(msg.job.Status)),
			zap.Int("completed_queries", msg.job.CompletedQueries))
		return o.finishJob()
	}
	return nil
}
