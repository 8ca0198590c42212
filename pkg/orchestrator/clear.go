package orchestrator

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// RequestClear asks for confirmation before forgetting the current job.
// It is offered even when no job is tracked.
func (o *Orchestrator) RequestClear() tea.Cmd {
	if o.closed {
		return nil
	}
	o.pending = clearConfirmation(o.state.jobID())
	return nil
}

// confirmClear resets local state at once and clears the job remotely on a
// best-effort basis. Late status responses for the old job are dropped by
// job id, and a start still in flight is invalidated.
func (o *Orchestrator) confirmClear() tea.Cmd {
	jobID := o.state.jobID()
	o.starts++

	o.stopPolling()
	o.confirm.stop()
	o.state.setJob(nil)
	cmd := o.setScraping(false)

	if jobID == "" {
		return cmd
	}
	o.log.Info("clearing job", zap.String("job_id", jobID))
	return tea.Batch(cmd, o.call(func(ctx context.Context) tea.Msg {
		return clearResultMsg{jobID: jobID, err: o.api.ClearJobStatus(ctx, jobID)}
	}))
}

func (o *Orchestrator) handleClearResult(msg clearResultMsg) tea.Cmd {
	if msg.err != nil {
		o.log.Warn("failed to clear job status on backend", zap.String("job_id", msg.jobID), zap.Error(msg.err))
		return nil
	}
	o.log.Debug("job status cleared", zap.String("job_id", msg.jobID))
	return nil
}
