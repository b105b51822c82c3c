// Package sleep turns system sleep and wake notifications into
// sleep-originated pause and resume requests against the countdown timer.
package sleep

import (
	"errors"
	"log/slog"

	"drinknow/internal/core/countdown"
)

// ErrUnsupported indicates sleep notifications are not available on this
// system.
var ErrUnsupported = errors.New("sleep notifications unsupported")

// Transition is a power-state change reported by the platform.
type Transition string

const (
	TransitionSleep Transition = "sleep"
	TransitionWake  Transition = "wake"
)

// Notifier delivers power-state transitions from the platform.
type Notifier interface {
	Subscribe() (<-chan Transition, error)
	Close() error
}

// Pauser is the slice of the timer API the monitor drives.
type Pauser interface {
	Pause(origin countdown.Origin)
	Resume(origin countdown.Origin)
}

// Monitor pauses the countdown when the system announces sleep and resumes
// it on wake. If the platform channel is unavailable the monitor degrades to
// inert with a single warning instead of failing startup.
type Monitor struct {
	notifier Notifier
	pauser   Pauser
	log      *slog.Logger
	stopCh   chan struct{}
}

// NewMonitor creates a sleep monitor. It does not listen until Start.
func NewMonitor(notifier Notifier, pauser Pauser, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		notifier: notifier,
		pauser:   pauser,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start subscribes to the platform notifier and launches the listen loop.
func (monitor *Monitor) Start() {
	transitions, err := monitor.notifier.Subscribe()
	if err != nil {
		monitor.log.Warn("sleep notifications unavailable, monitor disabled", "error", err)
		return
	}
	go monitor.run(transitions)
}

// Stop terminates the listen loop and releases the platform subscription.
func (monitor *Monitor) Stop() {
	select {
	case <-monitor.stopCh:
	default:
		close(monitor.stopCh)
	}
	_ = monitor.notifier.Close()
}

func (monitor *Monitor) run(transitions <-chan Transition) {
	for {
		select {
		case <-monitor.stopCh:
			return
		case transition, ok := <-transitions:
			if !ok {
				return
			}
			monitor.handle(transition)
		}
	}
}

func (monitor *Monitor) handle(transition Transition) {
	switch transition {
	case TransitionSleep:
		monitor.pauser.Pause(countdown.OriginPreventSleep)
	case TransitionWake:
		monitor.pauser.Resume(countdown.OriginPreventSleep)
	}
}
