package dashboard

import (
	"sync"
	"time"

	"scrape-dash-go/pkg/orchestrator"
)

// Toast is a transient notification.
type Toast struct {
	Message string
	Level   orchestrator.Level
	Expires time.Time
}

// Toasts collects orchestrator notifications for rendering. Alerts are held
// separately until acknowledged; everything else expires after TTL.
type Toasts struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	items  []Toast
	alerts []string
}

// MaxToasts caps the visible stack; older toasts are dropped first.
const MaxToasts = 4

// NewToasts creates a queue whose toasts live for ttl.
func NewToasts(ttl time.Duration, now func() time.Time) *Toasts {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Toasts{ttl: ttl, now: now}
}

// Notify implements orchestrator.Notifier.
func (t *Toasts) Notify(message string, level orchestrator.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level == orchestrator.LevelAlert {
		t.alerts = append(t.alerts, message)
		return
	}
	t.items = append(t.items, Toast{Message: message, Level: level, Expires: t.now().Add(t.ttl)})
	if len(t.items) > MaxToasts {
		t.items = t.items[len(t.items)-MaxToasts:]
	}
}

// Expire drops toasts whose deadline has passed at now.
func (t *Toasts) Expire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.items[:0]
	for _, item := range t.items {
		if now.Before(item.Expires) {
			kept = append(kept, item)
		}
	}
	t.items = kept
}

// Active returns the toasts still on screen, oldest first.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.items...)
}

// Alert returns the oldest unacknowledged alert.
func (t *Toasts) Alert() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.alerts) == 0 {
		return "", false
	}
	return t.alerts[0], true
}

// Dismiss acknowledges the oldest alert.
func (t *Toasts) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.alerts) > 0 {
		t.alerts = t.alerts[1:]
	}
}
