package orchestrator

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler delivers msg back to Update after d.
type Scheduler interface {
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

// TeaScheduler schedules with tea.Tick. Ticks cannot be cancelled, so every
// scheduled message carries a generation that Update checks on arrival.
type TeaScheduler struct{}

func (TeaScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// handle is the owned lifecycle of one periodic task. Starting or stopping
// bumps the generation, which invalidates every tick already in flight.
type handle struct {
	name   string
	gen    uint64
	active bool
	jobID  string
}

func (h *handle) start(jobID string) uint64 {
	h.gen++
	h.active = true
	h.jobID = jobID
	return h.gen
}

// stop reports whether anything was running.
func (h *handle) stop() bool {
	if !h.active {
		return false
	}
	h.gen++
	h.active = false
	h.jobID = ""
	return true
}

func (h *handle) live(gen uint64) bool {
	return h.active && h.gen == gen
}
