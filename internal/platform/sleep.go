package platform

import "drinknow/internal/core/sleep"

// NewSleepNotifier returns a platform-specific sleep/wake notifier. When the
// platform has no notification channel, Subscribe returns
// sleep.ErrUnsupported and the sleep monitor degrades to inert.
func NewSleepNotifier() sleep.Notifier {
	return newSleepNotifier()
}
