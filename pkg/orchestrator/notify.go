package orchestrator

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Level classifies a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
	// LevelAlert must be acknowledged before the user can continue.
	LevelAlert
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	case LevelAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Notifier receives user-facing messages from the orchestrator.
type Notifier interface {
	Notify(message string, level Level)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, level Level)

func (f NotifierFunc) Notify(message string, level Level) { f(message, level) }

// LogNotifier logs every notification and echoes it to Out when set.
// The headless commands use it.
type LogNotifier struct {
	Log *zap.Logger
	Out io.Writer
}

func (n LogNotifier) Notify(message string, level Level) {
	if n.Log != nil {
		switch level {
		case LevelError, LevelAlert:
			n.Log.Warn("notification", zap.String("level", level.String()), zap.String("message", message))
		default:
			n.Log.Info("notification", zap.String("level", level.String()), zap.String("message", message))
		}
	}
	if n.Out != nil {
		fmt.Fprintf(n.Out, "[%s] %s\n", level, message)
	}
}
