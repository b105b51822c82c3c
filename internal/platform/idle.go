// Package platform holds the OS-specific adapters: idle probes, sleep
// notifications, autostart, and the single-instance guard. Everything is
// exposed behind small interfaces so the core never touches a platform API.
package platform

import "time"

// IdleProvider returns the duration since the last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider. On systems
// without a usable input-idle source the provider reports
// idle.ErrUnsupported, which degrades the idle monitor to inert.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}
