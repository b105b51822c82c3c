// Package countdown implements the break countdown state machine. A single
// mutex serializes every check-and-transition; events are published after the
// state lock is dropped so a subscriber may call back into the timer without
// deadlocking.
package countdown

import (
	"errors"
	"sync"
	"time"

	"drinknow/internal/core/bus"
)

// ErrInvalidTransition is returned by Start when a countdown is already
// underway. Callers treat it as benign.
var ErrInvalidTransition = errors.New("invalid timer transition")

// Config contains runtime options for the Timer.
type Config struct {
	TickInterval time.Duration
}

// Timer is the authoritative countdown state machine.
type Timer struct {
	mu         sync.Mutex
	phase      Phase
	remaining  time.Duration
	pause      *Pause
	configured time.Duration
	looping    bool
	stopCh     chan struct{}

	// pubMu orders publications with commits and gates them after Stop.
	pubMu  sync.Mutex
	closed bool

	options Config
	events  *bus.Bus[Event]
}

// New creates a Timer with the given configured duration. The tick loop does
// not run until Start or Restart.
func New(configured time.Duration, options Config) *Timer {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Timer{
		phase:      PhaseNotStarted,
		configured: configured,
		options:    options,
		stopCh:     make(chan struct{}),
		events:     bus.New[Event](),
	}
}

// Subscribe registers an observer of countdown events. Cancel the
// subscription when the observing surface closes.
func (timer *Timer) Subscribe() (<-chan Event, func()) {
	return timer.events.Subscribe()
}

// Status returns a snapshot of the current state.
func (timer *Timer) Status() Status {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.statusLocked()
}

// Start begins a countdown of the given duration. Valid only from the
// NotStarted and Finished phases; otherwise ErrInvalidTransition.
func (timer *Timer) Start(duration time.Duration) error {
	timer.mu.Lock()
	if timer.phase == PhaseActive || timer.phase == PhasePaused {
		timer.mu.Unlock()
		return ErrInvalidTransition
	}
	if duration > 0 {
		timer.configured = duration
	}
	timer.phase = PhaseActive
	timer.remaining = timer.configured
	timer.pause = nil
	timer.ensureLoopLocked()
	timer.commit()
	return nil
}

// Restart resets the countdown to the configured duration from any state.
func (timer *Timer) Restart() {
	timer.mu.Lock()
	timer.phase = PhaseActive
	timer.remaining = timer.configured
	timer.pause = nil
	timer.ensureLoopLocked()
	timer.commit()
}

// SetDuration stores a new configured duration. It takes effect on the next
// Start or Restart and never truncates a running countdown.
func (timer *Timer) SetDuration(duration time.Duration) {
	if duration <= 0 {
		return
	}
	timer.mu.Lock()
	timer.configured = duration
	timer.mu.Unlock()
}

// Pause freezes an active countdown with the given origin. A pause already
// in place is overwritten only by a strictly higher-priority origin; equal or
// lower priority requests are no-ops, as are pauses outside Active/Paused.
func (timer *Timer) Pause(origin Origin) {
	timer.mu.Lock()
	switch timer.phase {
	case PhaseActive:
		timer.phase = PhasePaused
		timer.pause = newPause(origin)
		timer.commit()
		return
	case PhasePaused:
		if origin.Priority() > timer.pause.Origin.Priority() {
			timer.pause = newPause(origin)
			timer.commit()
			return
		}
	}
	timer.mu.Unlock()
}

// Resume lifts the current pause only if its origin matches. Used by the
// idle and sleep monitors so one source never clears another's pause.
func (timer *Timer) Resume(origin Origin) {
	timer.mu.Lock()
	if timer.phase == PhasePaused && timer.pause.Origin == origin {
		timer.phase = PhaseActive
		timer.pause = nil
		timer.commit()
		return
	}
	timer.mu.Unlock()
}

// ResumeAny lifts whichever pause is active. Used for explicit user action.
func (timer *Timer) ResumeAny() {
	timer.mu.Lock()
	if timer.phase == PhasePaused {
		timer.phase = PhaseActive
		timer.pause = nil
		timer.commit()
		return
	}
	timer.mu.Unlock()
}

// Toggle pauses a running countdown as a user pause, or resumes a paused
// one regardless of origin. One atomic check-and-transition, so a concurrent
// monitor request cannot interleave.
func (timer *Timer) Toggle() {
	timer.mu.Lock()
	switch timer.phase {
	case PhaseActive:
		timer.phase = PhasePaused
		timer.pause = newPause(OriginUser)
		timer.commit()
		return
	case PhasePaused:
		timer.phase = PhaseActive
		timer.pause = nil
		timer.commit()
		return
	}
	timer.mu.Unlock()
}

// Stop halts the tick loop and suppresses all further events. No event is
// observed after Stop returns.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	if timer.looping {
		close(timer.stopCh)
		timer.looping = false
	}
	timer.mu.Unlock()

	timer.pubMu.Lock()
	timer.closed = true
	timer.pubMu.Unlock()
	timer.events.Close()
}

func (timer *Timer) ensureLoopLocked() {
	if timer.looping {
		return
	}
	timer.looping = true
	go timer.run(timer.stopCh)
}

func (timer *Timer) run(stopCh chan struct{}) {
	ticker := time.NewTicker(timer.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			timer.tick()
		}
	}
}

// tick advances the countdown by one second. Reaching zero transitions to
// Finished exactly once; later ticks are no-ops until a restart.
func (timer *Timer) tick() {
	timer.mu.Lock()
	if timer.phase != PhaseActive {
		timer.mu.Unlock()
		return
	}
	timer.remaining -= time.Second
	if timer.remaining <= 0 {
		timer.remaining = 0
		timer.phase = PhaseFinished
	}
	timer.commit()
}

func (timer *Timer) statusLocked() Status {
	status := Status{
		Phase:            timer.phase,
		RemainingSeconds: int(timer.remaining / time.Second),
	}
	if timer.phase == PhaseNotStarted {
		status.RemainingSeconds = int(timer.configured / time.Second)
	}
	if timer.pause != nil {
		copied := *timer.pause
		status.Pause = &copied
	}
	return status
}

// commit publishes the just-applied transition. It must be called with the
// state lock held and releases it: the publish lock is taken first so
// concurrent transitions reach subscribers in commit order, then the state
// lock is dropped before the event leaves the timer.
func (timer *Timer) commit() {
	event := Event{Status: timer.statusLocked()}
	timer.pubMu.Lock()
	timer.mu.Unlock()
	if !timer.closed {
		timer.events.Publish(event)
	}
	timer.pubMu.Unlock()
}

func newPause(origin Origin) *Pause {
	pause := &Pause{Origin: origin}
	if origin == OriginPreventSleep {
		pause.Since = time.Now()
	}
	return pause
}
