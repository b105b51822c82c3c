// Package alert is the user-visible failure surface. Alerts are logged and
// forwarded to any registered sinks (e.g. the event hub) so an attached UI
// can render them; they never crash the process.
package alert

import (
	"log/slog"
	"sync"
)

// Alert is one user-visible notification.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Notifier fans alerts out to sinks and the log.
type Notifier struct {
	log *slog.Logger

	mu    sync.Mutex
	sinks []func(Alert)
}

// NewNotifier creates a notifier logging through log.
func NewNotifier(log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{log: log}
}

// AddSink registers an additional delivery target for every alert.
func (notifier *Notifier) AddSink(sink func(Alert)) {
	notifier.mu.Lock()
	notifier.sinks = append(notifier.sinks, sink)
	notifier.mu.Unlock()
}

// Alert surfaces one failure to the user.
func (notifier *Notifier) Alert(title, message string, err error) {
	entry := Alert{Title: title, Message: message}
	if err != nil {
		entry.Detail = err.Error()
	}
	notifier.log.Error("alert", "title", title, "message", message, "error", err)

	notifier.mu.Lock()
	sinks := append(([]func(Alert))(nil), notifier.sinks...)
	notifier.mu.Unlock()
	for _, sink := range sinks {
		sink(entry)
	}
}
