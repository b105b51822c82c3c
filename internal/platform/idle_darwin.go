package platform

import (
	"time"

	"drinknow/internal/core/idle"
)

type idleProvider struct{}

func newIdleProvider() IdleProvider {
	return &idleProvider{}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	return 0, idle.ErrUnsupported
}
