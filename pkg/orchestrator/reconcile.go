package orchestrator

import (
	"scrape-dash-go/pkg/models"
)

// JobLostMessage is the error attached to a job the backend no longer knows.
const JobLostMessage = "Job lost (Server might have restarted)"

// Override is a local patch applied on top of server state.
type Override int

const (
	// OverrideNone takes the server snapshot as is.
	OverrideNone Override = iota
	// OverrideTerminating marks the job terminating before the server confirms.
	OverrideTerminating
	// OverrideRollback undoes OverrideTerminating after a rejected terminate call.
	OverrideRollback
	// OverrideJobLost fails the job after the server answered not found.
	OverrideJobLost
)

// Reconcile returns the next job value from the current local job, an
// optional server snapshot and a local override. Neither input is modified.
//
// A server snapshot always wins over local state. Overrides patch only the
// status and, for a lost job, the error; no other field is invented.
func Reconcile(local, server *models.Job, override Override) *models.Job {
	base := local
	if server != nil {
		base = server
	}
	if base == nil {
		return nil
	}
	next := base.Clone()

	switch override {
	case OverrideTerminating:
		if next.Status.IsTerminable() {
			next.Status = models.JobStatusTerminating
		}
	case OverrideRollback:
		if next.Status == models.JobStatusTerminating {
			next.Status = models.JobStatusProcessing
		}
	case OverrideJobLost:
		msg := JobLostMessage
		next.Status = models.JobStatusFailed
		next.Error = &msg
	}
	return next
}
