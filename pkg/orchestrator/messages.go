package orchestrator

import (
	"scrape-dash-go/pkg/models"
)

// Messages the orchestrator sends to itself through the Bubble Tea loop.
// Periodic ticks carry the generation of the handle that scheduled them.

type pollTickMsg struct{ gen uint64 }

type statusFetchedMsg struct {
	gen   uint64
	jobID string
	job   *models.Job
	err   error
}

type healthTickMsg struct{ gen uint64 }

type healthCheckedMsg struct {
	ok  bool
	err error
}

type filesTickMsg struct{ gen uint64 }

type filesFetchedMsg struct {
	files []models.GeneratedFile
	err   error
}

type activeJobMsg struct {
	job *models.Job
	err error
}

type startResultMsg struct {
	gen     uint64
	queries []string
	started *models.ScrapeStarted
	err     error
}

type terminateResultMsg struct {
	jobID string
	err   error
}

type confirmTickMsg struct{ gen uint64 }

type confirmFetchedMsg struct {
	gen   uint64
	jobID string
	job   *models.Job
	err   error
}

type clearResultMsg struct {
	jobID string
	err   error
}

type deleteFileResultMsg struct {
	filename string
	err      error
}

type deleteAllResultMsg struct {
	ack *models.Ack
	err error
}
