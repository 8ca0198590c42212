package orchestrator

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// RequestDeleteFile asks for confirmation before deleting filename.
func (o *Orchestrator) RequestDeleteFile(filename string) tea.Cmd {
	if o.closed || filename == "" {
		return nil
	}
	o.pending = deleteFileConfirmation(filename)
	return nil
}

// RequestDeleteAllFiles asks for confirmation before deleting every finished file.
func (o *Orchestrator) RequestDeleteAllFiles() tea.Cmd {
	if o.closed {
		return nil
	}
	o.pending = deleteAllConfirmation()
	return nil
}

func (o *Orchestrator) confirmDeleteFile(filename string) tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		return deleteFileResultMsg{filename: filename, err: o.api.DeleteFile(ctx, filename)}
	})
}

func (o *Orchestrator) confirmDeleteAllFiles() tea.Cmd {
	return o.call(func(ctx context.Context) tea.Msg {
		ack, err := o.api.DeleteAllFiles(ctx)
		return deleteAllResultMsg{ack: ack, err: err}
	})
}

func (o *Orchestrator) handleDeleteFileResult(msg deleteFileResultMsg) tea.Cmd {
	if msg.err != nil {
		o.log.Error("failed to delete file", zap.String("filename", msg.filename), zap.Error(msg.err))
		o.notify("Failed to delete file", LevelAlert)
		return nil
	}
	o.notify("Deleted "+msg.filename, LevelSuccess)
	return o.loadFiles()
}

func (o *Orchestrator) handleDeleteAllResult(msg deleteAllResultMsg) tea.Cmd {
	if msg.err != nil {
		o.log.Error("failed to delete all files", zap.Error(msg.err))
		o.notify("Failed to delete all CSV files", LevelAlert)
		return nil
	}
	if msg.ack != nil && msg.ack.Message != "" {
		o.notify(msg.ack.Message, LevelSuccess)
	}
	return o.loadFiles()
}
