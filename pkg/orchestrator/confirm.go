package orchestrator

import "fmt"

// ConfirmKind names the destructive action waiting for a yes/no answer.
type ConfirmKind int

const (
	ConfirmNone ConfirmKind = iota
	ConfirmTerminate
	ConfirmClear
	ConfirmDeleteFile
	ConfirmDeleteAllFiles
)

// Confirmation is a pending destructive action.
type Confirmation struct {
	Kind   ConfirmKind
	Target string // filename for ConfirmDeleteFile, job id otherwise
	Prompt string
}

// Active reports whether an answer is awaited.
func (c Confirmation) Active() bool {
	return c.Kind != ConfirmNone
}

func terminateConfirmation(jobID string) Confirmation {
	return Confirmation{
		Kind:   ConfirmTerminate,
		Target: jobID,
		Prompt: "This will terminate the current job, stop the scraping process, and cancel all remaining pending queries. Completed queries will be preserved. Continue?",
	}
}

func clearConfirmation(jobID string) Confirmation {
	return Confirmation{
		Kind:   ConfirmClear,
		Target: jobID,
		Prompt: "This will clear the current status, remove all pending queries, and permanently delete this job from the system. Action cannot be undone. Continue?",
	}
}

func deleteFileConfirmation(filename string) Confirmation {
	return Confirmation{
		Kind:   ConfirmDeleteFile,
		Target: filename,
		Prompt: fmt.Sprintf("Are you sure you want to delete %s?", filename),
	}
}

func deleteAllConfirmation() Confirmation {
	return Confirmation{
		Kind:   ConfirmDeleteAllFiles,
		Prompt: "Are you sure you want to delete ALL CSV files? This cannot be undone.",
	}
}
