package orchestrator

import (
	"scrape-dash-go/pkg/models"
)

// Health is the last known backend reachability.
type Health int

const (
	HealthUnknown Health = iota
	HealthUp
	HealthDown
)

func (h Health) String() string {
	switch h {
	case HealthUp:
		return "up"
	case HealthDown:
		return "down"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of orchestrator state for rendering.
type Snapshot struct {
	Job      *models.Job
	Scraping bool
	Health   Health
	Files    []models.GeneratedFile
	Pending  Confirmation
	Polling  bool
}

// store is the single-writer register. Only Orchestrator.Update writes to it,
// and the job pointer is always replaced, never mutated.
type store struct {
	job      *models.Job
	scraping bool
	health   Health
	files    []models.GeneratedFile
}

func (s *store) jobID() string {
	if s.job == nil {
		return ""
	}
	return s.job.JobID
}

func (s *store) setJob(job *models.Job) {
	s.job = job
}

func (s *store) setFiles(files []models.GeneratedFile) {
	s.files = append([]models.GeneratedFile(nil), files...)
}

func (s *store) snapshot() Snapshot {
	return Snapshot{
		Job:      s.job.Clone(),
		Scraping: s.scraping,
		Health:   s.health,
		Files:    append([]models.GeneratedFile(nil), s.files...),
	}
}
