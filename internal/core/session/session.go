// Package session reacts to countdown expiry: it gates session start on the
// license entitlement, performs the bookkeeping around a drink reminder, and
// restarts the countdown cycle.
package session

import (
	"context"
	"log/slog"
	"time"

	"drinknow/internal/core/bus"
	"drinknow/internal/core/countdown"
	"drinknow/internal/core/model"
)

// Entitlement answers whether the license is currently active. The query may
// block on network I/O and is bounded by the collaborator's own timeout.
type Entitlement interface {
	Status(ctx context.Context) (bool, error)
}

// Bookkeeper tracks session counts and the feedback prompt schedule.
type Bookkeeper interface {
	IncreaseSessionCount() error
	ShouldShowFeedback() bool
}

// Tracker emits analytics events. Failures are the tracker's problem.
type Tracker interface {
	Send(ctx context.Context, event string)
}

// Alerter surfaces user-visible failures.
type Alerter interface {
	Alert(title, message string, err error)
}

// Surfaces groups the UI capabilities the orchestrator calls into. All of
// them are rendered out of process; these calls only signal intent.
type Surfaces interface {
	HideSession()
	ShowWelcome()
	ShowFeedback()
}

// UpdatePrompter checks for a newer release and reports whether a prompt was
// shown to the user.
type UpdatePrompter interface {
	PromptIfAvailable(ctx context.Context) bool
}

// TimerControl is the slice of the countdown API the orchestrator drives.
type TimerControl interface {
	Restart()
}

// SettingsSource returns the current user settings.
type SettingsSource func() model.Settings

// Collaborators are the external capabilities a session flow depends on.
type Collaborators struct {
	License  Entitlement
	Book     Bookkeeper
	Tracking Tracker
	Alert    Alerter
	Surfaces Surfaces
	Updater  UpdatePrompter
	Settings SettingsSource
}

// EventDrinkReminder is the tracking event emitted per entitled session.
const EventDrinkReminder = "drink_reminder"

// Orchestrator drives the start and end of drink sessions.
type Orchestrator struct {
	timer   TimerControl
	collab  Collaborators
	log     *slog.Logger
	starts  *bus.Bus[model.SessionStartEvent]
	timeout time.Duration
}

// New creates an orchestrator. The entitlement query on each session start
// is bounded by timeout (defaults to 10s when zero).
func New(timer TimerControl, collab Collaborators, timeout time.Duration, log *slog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		timer:   timer,
		collab:  collab,
		log:     log,
		starts:  bus.New[model.SessionStartEvent](),
		timeout: timeout,
	}
}

// Starts exposes the session handoff stream for the session surface.
func (orch *Orchestrator) Starts() (<-chan model.SessionStartEvent, func()) {
	return orch.starts.Subscribe()
}

// Run consumes countdown events until ctx is cancelled or the stream closes,
// starting a session on every Finished transition.
func (orch *Orchestrator) Run(ctx context.Context, events <-chan countdown.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Status.Phase == countdown.PhaseFinished {
				orch.StartSession(ctx, nil)
			}
		}
	}
}

// StartSession runs the session-start flow, either for a countdown expiry
// (overwrite nil) or a direct user request. Demo mode bypasses entitlement,
// bookkeeping, and the timer restart entirely. Otherwise the countdown is
// restarted exactly once, no matter how the entitlement check goes.
func (orch *Orchestrator) StartSession(ctx context.Context, overwrite *model.SessionStartEvent) {
	if overwrite != nil && overwrite.DemoMode {
		orch.starts.Publish(*overwrite)
		return
	}
	defer orch.timer.Restart()

	queryCtx, cancel := context.WithTimeout(ctx, orch.timeout)
	defer cancel()
	active, err := orch.collab.License.Status(queryCtx)
	if err != nil {
		orch.collab.Alert.Alert(
			"Unable to access license server",
			"We are sorry, but we have trouble accessing the license server.",
			err,
		)
		active = false
	}

	if !active {
		orch.collab.Surfaces.ShowWelcome()
		return
	}

	orch.log.Info("increase session counter")
	if err := orch.collab.Book.IncreaseSessionCount(); err != nil {
		orch.collab.Alert.Alert(
			"Can't update session counter",
			"There was an error while storing your session progress.",
			err,
		)
	}
	orch.collab.Tracking.Send(ctx, EventDrinkReminder)

	orch.starts.Publish(orch.resolveStart(overwrite))
}

// EndSession hides the session surface and, outside demo mode, shows at most
// one follow-up prompt: the updater wins, feedback only if no update was
// offered.
func (orch *Orchestrator) EndSession(ctx context.Context, demoMode bool) {
	orch.log.Info("end reminder session", "demo", demoMode)
	orch.collab.Surfaces.HideSession()
	if demoMode {
		return
	}

	updaterShown := orch.collab.Updater.PromptIfAvailable(ctx)
	if !updaterShown && orch.collab.Book.ShouldShowFeedback() {
		orch.collab.Surfaces.ShowFeedback()
	}
}

// Close shuts the session handoff stream down.
func (orch *Orchestrator) Close() {
	orch.starts.Close()
}

// resolveStart picks explicit parameters when supplied, then stored user
// settings, then the documented defaults.
func (orch *Orchestrator) resolveStart(overwrite *model.SessionStartEvent) model.SessionStartEvent {
	if overwrite != nil {
		return *overwrite
	}
	settings := orch.collab.Settings()
	start := model.SessionStartEvent{
		SipSize:                settings.SipSize,
		SelectedDrinkCharacter: settings.Character,
	}
	if start.SipSize == "" {
		start.SipSize = model.BigSip
	}
	if start.SelectedDrinkCharacter == "" {
		start.SelectedDrinkCharacter = model.YoungWoman
	}
	return start
}
