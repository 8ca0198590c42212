package models

// FileStatus is derived by the backend from whether a running job still writes the file.
type FileStatus string

const (
	FileStatusProcessing FileStatus = "processing"
	FileStatusComplete   FileStatus = "complete"
)

// GeneratedFile is a CSV artifact listed by the backend.
type GeneratedFile struct {
	Filename  string     `json:"filename"`
	Size      int64      `json:"size"`
	Created   Timestamp  `json:"created"`
	Completed Timestamp  `json:"completed"`
	Status    FileStatus `json:"status"`
}

// IsProcessing reports whether a running job is still writing the file.
func (f GeneratedFile) IsProcessing() bool {
	return f.Status == FileStatusProcessing
}

// ScrapeRequest is the body of a start-scrape call.
type ScrapeRequest struct {
	Queries  []string `json:"queries"`
	Location string   `json:"location"`
}

// ScrapeStarted is the backend's acknowledgement of a new job.
type ScrapeStarted struct {
	JobID        string `json:"job_id"`
	Message      string `json:"message"`
	TotalQueries int    `json:"total_queries"`
}

// Ack is the generic {"message": ...} acknowledgement returned by mutating endpoints.
type Ack struct {
	Message      string   `json:"message"`
	JobID        string   `json:"job_id,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
}
