package dashboard

// Focus identifies which pane receives navigation keys.
type Focus int

// Pane order for tab cycling
const (
	FocusConfig Focus = iota
	FocusStatus
	FocusFiles
	focusCount
)

// Next returns the pane after f, wrapping around.
func (f Focus) Next() Focus {
	return (f + 1) % focusCount
}

// Prev returns the pane before f, wrapping around.
func (f Focus) Prev() Focus {
	return (f + focusCount - 1) % focusCount
}

func (f Focus) String() string {
	switch f {
	case FocusConfig:
		return "config"
	case FocusStatus:
		return "status"
	case FocusFiles:
		return "files"
	default:
		return "unknown"
	}
}

// Step constants for the dashboard input state machine
const (
	StepBrowse = iota
	StepEditSingle
	StepEditMultiple
	StepConfirm
	StepAlert
)

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80

// OfflineBanner is shown while the backend health check fails.
const OfflineBanner = "Backend Server Offline - Please start FastAPI on port 8000"

// EmptyStatus is shown when no job is tracked.
const EmptyStatus = "No active query. Start a new scraping query to see status updates here."
