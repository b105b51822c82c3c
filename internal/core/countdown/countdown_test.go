package countdown

import (
	"testing"
	"time"
)

// quiet keeps the real tick loop from firing during deterministic tests;
// ticks are driven by calling tick directly.
var quiet = Config{TickInterval: time.Hour}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-events:
		if !ok {
			t.Fatal("event stream closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case event, ok := <-events:
		if ok {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func expectStatus(t *testing.T, status Status, phase Phase, remainingSeconds int) {
	t.Helper()
	if status.Phase != phase {
		t.Fatalf("phase: got %q, want %q", status.Phase, phase)
	}
	if status.RemainingSeconds != remainingSeconds {
		t.Fatalf("remaining: got %d, want %d", status.RemainingSeconds, remainingSeconds)
	}
}

func TestStartAndTick(t *testing.T) {
	timer := New(300*time.Second, quiet)
	defer timer.Stop()
	events, cancel := timer.Subscribe()
	defer cancel()

	if err := timer.Start(300 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	expectStatus(t, nextEvent(t, events).Status, PhaseActive, 300)

	for i := 0; i < 5; i++ {
		timer.tick()
		expectStatus(t, nextEvent(t, events).Status, PhaseActive, 299-i)
	}
	expectStatus(t, timer.Status(), PhaseActive, 295)
}

func TestStartWhileRunningIsInvalid(t *testing.T) {
	timer := New(300*time.Second, quiet)
	defer timer.Stop()

	if err := timer.Start(300 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := timer.Start(60 * time.Second); err != ErrInvalidTransition {
		t.Fatalf("second Start: got %v, want ErrInvalidTransition", err)
	}
	// The rejected call must not have touched the countdown.
	expectStatus(t, timer.Status(), PhaseActive, 300)
}

func TestPausePriorityOverwrite(t *testing.T) {
	timer := New(295*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(295 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	timer.Pause(OriginIdle)
	status := timer.Status()
	expectStatus(t, status, PhasePaused, 295)
	if status.Pause.Origin != OriginIdle {
		t.Fatalf("origin: got %q, want idle", status.Pause.Origin)
	}

	// User outranks Idle, so the pause is overwritten in place.
	timer.Pause(OriginUser)
	status = timer.Status()
	expectStatus(t, status, PhasePaused, 295)
	if status.Pause.Origin != OriginUser {
		t.Fatalf("origin: got %q, want user", status.Pause.Origin)
	}

	timer.ResumeAny()
	expectStatus(t, timer.Status(), PhaseActive, 295)
}

func TestPauseEqualOrLowerPriorityIsNoOp(t *testing.T) {
	timer := New(100*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(100 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	events, cancel := timer.Subscribe()
	defer cancel()

	timer.Pause(OriginUser)
	nextEvent(t, events)

	// Same priority: no transition, no event, no duration drift.
	timer.Pause(OriginUser)
	expectNoEvent(t, events)

	// Lower priority: also a no-op.
	timer.Pause(OriginIdle)
	expectNoEvent(t, events)

	status := timer.Status()
	expectStatus(t, status, PhasePaused, 100)
	if status.Pause.Origin != OriginUser {
		t.Fatalf("origin: got %q, want user", status.Pause.Origin)
	}
}

func TestTargetedResume(t *testing.T) {
	timer := New(50*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(50 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	timer.Pause(OriginIdle)
	timer.Pause(OriginPreventSleep)
	status := timer.Status()
	expectStatus(t, status, PhasePaused, 50)
	if status.Pause.Origin != OriginPreventSleep {
		t.Fatalf("origin: got %q, want prevent_sleep", status.Pause.Origin)
	}
	if status.Pause.Since.IsZero() {
		t.Fatal("prevent_sleep pause should carry its start timestamp")
	}

	// Wrong origin: the pause stays.
	timer.Resume(OriginIdle)
	expectStatus(t, timer.Status(), PhasePaused, 50)

	timer.Resume(OriginPreventSleep)
	expectStatus(t, timer.Status(), PhaseActive, 50)
}

func TestResumeWithoutPauseIsNoOp(t *testing.T) {
	timer := New(60*time.Second, quiet)
	defer timer.Stop()
	events, cancel := timer.Subscribe()
	defer cancel()

	timer.Resume(OriginIdle)
	timer.ResumeAny()
	expectNoEvent(t, events)
	expectStatus(t, timer.Status(), PhaseNotStarted, 60)
}

func TestPauseOutsideCountdownIsNoOp(t *testing.T) {
	timer := New(60*time.Second, quiet)
	defer timer.Stop()
	events, cancel := timer.Subscribe()
	defer cancel()

	timer.Pause(OriginUser)
	expectNoEvent(t, events)
	expectStatus(t, timer.Status(), PhaseNotStarted, 60)
}

func TestFinishFiresExactlyOnce(t *testing.T) {
	timer := New(300*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(1 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	events, cancel := timer.Subscribe()
	defer cancel()

	timer.tick()
	event := nextEvent(t, events)
	if event.Status.Phase != PhaseFinished {
		t.Fatalf("phase: got %q, want finished", event.Status.Phase)
	}

	// Further ticks must not re-fire Finished.
	timer.tick()
	timer.tick()
	expectNoEvent(t, events)

	timer.Restart()
	expectStatus(t, nextEvent(t, events).Status, PhaseActive, 1)
}

func TestRestartUsesConfiguredDuration(t *testing.T) {
	timer := New(300*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(300 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	timer.tick()

	timer.SetDuration(600 * time.Second)
	// A new duration never truncates the running countdown.
	timer.tick()
	expectStatus(t, timer.Status(), PhaseActive, 298)

	timer.Restart()
	expectStatus(t, timer.Status(), PhaseActive, 600)
}

func TestRestartClearsPause(t *testing.T) {
	timer := New(120*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(120 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	timer.Pause(OriginPreventSleep)

	timer.Restart()
	status := timer.Status()
	expectStatus(t, status, PhaseActive, 120)
	if status.Pause != nil {
		t.Fatal("restart should clear the pause")
	}
}

func TestToggle(t *testing.T) {
	timer := New(90*time.Second, quiet)
	defer timer.Stop()
	if err := timer.Start(90 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	timer.Toggle()
	status := timer.Status()
	expectStatus(t, status, PhasePaused, 90)
	if status.Pause.Origin != OriginUser {
		t.Fatalf("origin: got %q, want user", status.Pause.Origin)
	}

	// Toggle lifts any pause, even one it did not create.
	timer.Pause(OriginPreventSleep)
	timer.Toggle()
	expectStatus(t, timer.Status(), PhaseActive, 90)
}

func TestStopSuppressesEvents(t *testing.T) {
	timer := New(30*time.Second, quiet)
	if err := timer.Start(30 * time.Second); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	events, cancel := timer.Subscribe()
	defer cancel()

	timer.Stop()
	timer.tick()
	timer.Restart()

	// The subscription drains and closes; nothing arrives after Stop.
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			t.Fatal("event observed after Stop")
		case <-time.After(2 * time.Second):
			t.Fatal("subscription not closed after Stop")
		}
	}
}
