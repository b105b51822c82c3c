package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"drinknow/internal/core/sleep"
)

// sleepNotifier listens for the logind PrepareForSleep signal on the system
// bus. The signal's boolean argument is true just before suspend and false
// after resume.
type sleepNotifier struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	out     chan sleep.Transition
}

func newSleepNotifier() sleep.Notifier {
	return &sleepNotifier{}
}

func (notifier *sleepNotifier) Subscribe() (<-chan sleep.Transition, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connect system bus: %v", sleep.ErrUnsupported, err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: match PrepareForSleep: %v", sleep.ErrUnsupported, err)
	}

	notifier.conn = conn
	notifier.signals = make(chan *dbus.Signal, 8)
	notifier.out = make(chan sleep.Transition, 4)
	conn.Signal(notifier.signals)

	go notifier.translate()
	return notifier.out, nil
}

func (notifier *sleepNotifier) Close() error {
	if notifier.conn == nil {
		return nil
	}
	notifier.conn.RemoveSignal(notifier.signals)
	return notifier.conn.Close()
}

func (notifier *sleepNotifier) translate() {
	defer close(notifier.out)
	for signal := range notifier.signals {
		if signal.Name != "org.freedesktop.login1.Manager.PrepareForSleep" {
			continue
		}
		if len(signal.Body) != 1 {
			continue
		}
		entering, ok := signal.Body[0].(bool)
		if !ok {
			continue
		}
		if entering {
			notifier.out <- sleep.TransitionSleep
		} else {
			notifier.out <- sleep.TransitionWake
		}
	}
}
