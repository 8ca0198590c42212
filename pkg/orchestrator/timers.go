package orchestrator

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Health monitor: runs for the lifetime of the view.

func (o *Orchestrator) startHealthMonitor() tea.Cmd {
	gen := o.health.start("")
	return o.sched.After(o.opts.HealthInterval, healthTickMsg{gen: gen})
}

func (o *Orchestrator) checkHealth() tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		ok, err := o.api.CheckHealth(ctx)
		return healthCheckedMsg{ok: ok, err: err}
	})
}

func (o *Orchestrator) handleHealthTick(msg healthTickMsg) tea.Cmd {
	if !o.health.live(msg.gen) {
		return nil
	}
	return tea.Batch(
		o.checkHealth(),
		o.sched.After(o.opts.HealthInterval, healthTickMsg{gen: msg.gen}),
	)
}

func (o *Orchestrator) handleHealthChecked(msg healthCheckedMsg) tea.Cmd {
	prev := o.state.health
	if msg.err != nil || !msg.ok {
		o.state.health = HealthDown
	} else {
		o.state.health = HealthUp
	}
	if prev != o.state.health {
		o.log.Info("backend health changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", o.state.health),
			zap.Error(msg.err))
	}
	return nil
}

// File refresher: runs only while scraping.

func (o *Orchestrator) startFileRefresher() tea.Cmd {
	gen := o.files.start("")
	return o.sched.After(o.opts.FilesInterval, filesTickMsg{gen: gen})
}

func (o *Orchestrator) stopFileRefresher() {
	o.files.stop()
}

// RefreshFiles fetches the file list once.
func (o *Orchestrator) RefreshFiles() tea.Cmd {
	if o.closed {
		return nil
	}
	return o.loadFiles()
}

func (o *Orchestrator) loadFiles() tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		files, err := o.api.ListFiles(ctx)
		return filesFetchedMsg{files: files, err: err}
	})
}

func (o *Orchestrator) handleFilesTick(msg filesTickMsg) tea.Cmd {
	if !o.files.live(msg.gen) {
		return nil
	}
	return tea.Batch(
		o.loadFiles(),
		o.sched.After(o.opts.FilesInterval, filesTickMsg{gen: msg.gen}),
	)
}

func (o *Orchestrator) handleFilesFetched(msg filesFetchedMsg) tea.Cmd {
	if msg.err != nil {
		o.log.Debug("failed to load files", zap.Error(msg.err))
		o.state.health = HealthDown
		return nil
	}
	o.state.setFiles(msg.files)
	o.state.health = HealthUp
	return nil
}
