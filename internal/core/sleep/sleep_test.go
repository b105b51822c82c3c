package sleep

import (
	"testing"
	"time"

	"drinknow/internal/core/countdown"
)

type fakeNotifier struct {
	transitions chan Transition
	err         error
	closed      bool
}

func (notifier *fakeNotifier) Subscribe() (<-chan Transition, error) {
	if notifier.err != nil {
		return nil, notifier.err
	}
	return notifier.transitions, nil
}

func (notifier *fakeNotifier) Close() error {
	notifier.closed = true
	return nil
}

type pauseRecorder struct {
	calls chan string
}

func newPauseRecorder() *pauseRecorder {
	return &pauseRecorder{calls: make(chan string, 16)}
}

func (recorder *pauseRecorder) Pause(origin countdown.Origin) {
	recorder.calls <- "pause:" + string(origin)
}

func (recorder *pauseRecorder) Resume(origin countdown.Origin) {
	recorder.calls <- "resume:" + string(origin)
}

func (recorder *pauseRecorder) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-recorder.calls:
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestHandleMapsTransitions(t *testing.T) {
	recorder := newPauseRecorder()
	monitor := NewMonitor(&fakeNotifier{}, recorder, nil)

	monitor.handle(TransitionSleep)
	recorder.expect(t, "pause:prevent_sleep")

	monitor.handle(TransitionWake)
	recorder.expect(t, "resume:prevent_sleep")
}

func TestRunForwardsNotifierTransitions(t *testing.T) {
	notifier := &fakeNotifier{transitions: make(chan Transition, 4)}
	recorder := newPauseRecorder()
	monitor := NewMonitor(notifier, recorder, nil)

	monitor.Start()
	notifier.transitions <- TransitionSleep
	recorder.expect(t, "pause:prevent_sleep")
	notifier.transitions <- TransitionWake
	recorder.expect(t, "resume:prevent_sleep")

	monitor.Stop()
	if !notifier.closed {
		t.Fatal("Stop should close the platform subscription")
	}
}

func TestUnavailableNotifierDegradesToInert(t *testing.T) {
	notifier := &fakeNotifier{err: ErrUnsupported}
	recorder := newPauseRecorder()
	monitor := NewMonitor(notifier, recorder, nil)

	monitor.Start()
	select {
	case call := <-recorder.calls:
		t.Fatalf("inert monitor touched the timer: %s", call)
	case <-time.After(100 * time.Millisecond):
	}
}
