package dashboard

import "time"

// UITickMsg drives the elapsed-time display and toast expiry.
type UITickMsg struct {
	At time.Time
}

// DownloadDoneMsg is emitted when a file has been saved locally
type DownloadDoneMsg struct {
	Filename string
	Path     string
	Bytes    int64
	Err      error
}
