package countdown

import "time"

// Phase identifies which countdown variant is active.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhasePaused     Phase = "paused"
	PhaseFinished   Phase = "finished"
)

// Origin is the reason a countdown is frozen. Origins are ranked; a pause
// may only be overwritten by a strictly higher-priority origin, and a
// targeted resume must match the origin that paused the timer.
type Origin string

const (
	OriginIdle         Origin = "idle"
	OriginUser         Origin = "user"
	OriginPreventSleep Origin = "prevent_sleep"
)

// Priority ranks origins: PreventSleep > User > Idle.
func (origin Origin) Priority() int {
	switch origin {
	case OriginPreventSleep:
		return 3
	case OriginUser:
		return 2
	case OriginIdle:
		return 1
	}
	return 0
}

// Pause describes an active pause. Since is set only for OriginPreventSleep
// and records when the system announced sleep.
type Pause struct {
	Origin Origin    `json:"origin"`
	Since  time.Time `json:"since,omitempty"`
}

// Status is a snapshot of the countdown state. RemainingSeconds carries the
// configured duration while not started, the live countdown while active or
// paused, and zero once finished.
type Status struct {
	Phase            Phase  `json:"phase"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Pause            *Pause `json:"pause,omitempty"`
}

// IsRunning reports whether the countdown is actively ticking.
func (status Status) IsRunning() bool {
	return status.Phase == PhaseActive
}

// Remaining returns the snapshot countdown as a duration.
func (status Status) Remaining() time.Duration {
	return time.Duration(status.RemainingSeconds) * time.Second
}

// Event is broadcast on every committed countdown transition.
type Event struct {
	Status Status `json:"status"`
}
