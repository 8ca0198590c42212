package orchestrator

import (
	"context"

	"scrape-dash-go/pkg/scraper"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// RequestTerminate asks for confirmation before stopping the current job.
// A job that is already finishing only produces an informational notice.
func (o *Orchestrator) RequestTerminate() tea.Cmd {
	job := o.state.job
	if o.closed || job == nil {
		return nil
	}
	if !job.Status.IsTerminable() {
		o.notify("Termination already in progress...", LevelInfo)
		return nil
	}
	o.pending = terminateConfirmation(job.JobID)
	return nil
}

// confirmTerminate re-checks the job, since it may have finished while the
// prompt was open, then marks it terminating and sends the request.
func (o *Orchestrator) confirmTerminate(c Confirmation) tea.Cmd {
	job := o.state.job
	if job == nil || job.JobID != c.Target {
		return nil
	}
	if !job.Status.IsTerminable() {
		o.notify("Termination already in progress...", LevelInfo)
		return nil
	}

	o.state.setJob(Reconcile(job, nil, OverrideTerminating))
	o.notify("Termination signal sent. Stopping scraper...", LevelInfo)

	jobID := job.JobID
	o.log.Info("terminating job", zap.String("job_id", jobID))
	return o.call(func(ctx context.Context) tea.Msg {
		_, err := o.api.TerminateJob(ctx, jobID)
		return terminateResultMsg{jobID: jobID, err: err}
	})
}

func (o *Orchestrator) handleTerminateResult(msg terminateResultMsg) tea.Cmd {
	if msg.jobID != o.state.jobID() {
		return nil
	}

	if msg.err != nil {
		o.log.Error("terminate request failed", zap.String("job_id", msg.jobID), zap.Error(msg.err))
		o.notify("Failed to stop scraping: "+scraper.UserMessage(msg.err), LevelError)
		o.state.setJob(Reconcile(o.state.job, nil, OverrideRollback))
		return nil
	}

	gen := o.confirm.start(msg.jobID)
	return o.sched.After(o.opts.TerminateConfirmDelay, confirmTickMsg{gen: gen})
}

func (o *Orchestrator) handleConfirmTick(msg confirmTickMsg) tea.Cmd {
	if !o.confirm.live(msg.gen) {
		return nil
	}
	gen, jobID := msg.gen, o.confirm.jobID
	return o.call(func(ctx context.Context) tea.Msg {
		job, err := o.api.GetJobStatus(ctx, jobID)
		return confirmFetchedMsg{gen: gen, jobID: jobID, job: job, err: err}
	})
}

// handleConfirmFetched does not tolerate errors: the user is looking at a
// terminating job and must not be left waiting on silent retries.
func (o *Orchestrator) handleConfirmFetched(msg confirmFetchedMsg) tea.Cmd {
	if !o.confirm.live(msg.gen) || msg.jobID != o.state.jobID() {
		return nil
	}

	if msg.err != nil || msg.job == nil {
		o.log.Error("termination check failed", zap.String("job_id", msg.jobID), zap.Error(msg.err))
		o.confirm.stop()
		o.stopPolling()
		o.notify("Error checking job status after termination", LevelError)
		return o.setScraping(false)
	}

	o.state.setJob(Reconcile(o.state.job, msg.job, OverrideNone))
	if !msg.job.Status.IsTerminal() {
		return o.sched.After(o.opts.TerminateConfirmDelay, confirmTickMsg{gen: msg.gen})
	}

	o.confirm.stop()
	o.log.Info("termination confirmed", zap.String("job_id", msg.jobID), zap.String("status", string(msg.job.Status)))
	o.notify("Scraping job terminated successfully", LevelSuccess)
	return o.finishJob()
}
