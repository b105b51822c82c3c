//go:build !linux

package platform

import "drinknow/internal/core/sleep"

// No sleep notification channel is wired up on this platform yet; the sleep
// monitor degrades to inert.
type sleepNotifier struct{}

func newSleepNotifier() sleep.Notifier {
	return sleepNotifier{}
}

func (sleepNotifier) Subscribe() (<-chan sleep.Transition, error) {
	return nil, sleep.ErrUnsupported
}

func (sleepNotifier) Close() error {
	return nil
}
