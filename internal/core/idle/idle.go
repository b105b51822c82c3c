// Package idle watches user inactivity and translates it into idle-originated
// pause and resume requests against the countdown timer.
package idle

import (
	"errors"
	"log/slog"
	"time"

	"drinknow/internal/core/countdown"
)

// ErrUnsupported indicates idle detection is not available on this system.
var ErrUnsupported = errors.New("idle detection unsupported")

// Provider reports the duration of user inactivity.
type Provider interface {
	IdleDuration() (time.Duration, error)
}

// Pauser is the slice of the timer API the monitor drives.
type Pauser interface {
	Pause(origin countdown.Origin)
	Resume(origin countdown.Origin)
}

// Config contains runtime options for the Monitor.
type Config struct {
	Threshold      time.Duration
	SampleInterval time.Duration
}

// Monitor samples the idle provider at a fixed cadence. A pause is issued
// once per idle episode; the matching resume is targeted so it never lifts a
// pause owned by another source.
type Monitor struct {
	provider Provider
	pauser   Pauser
	config   Config
	log      *slog.Logger

	idle   bool
	inert  bool
	stopCh chan struct{}
}

// NewMonitor creates an idle monitor. It does not sample until Start.
func NewMonitor(provider Provider, pauser Pauser, config Config, log *slog.Logger) *Monitor {
	if config.Threshold <= 0 {
		config.Threshold = 5 * time.Minute
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		provider: provider,
		pauser:   pauser,
		config:   config,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sampling loop.
func (monitor *Monitor) Start() {
	go monitor.run()
}

// Stop terminates the sampling loop.
func (monitor *Monitor) Stop() {
	select {
	case <-monitor.stopCh:
	default:
		close(monitor.stopCh)
	}
}

func (monitor *Monitor) run() {
	ticker := time.NewTicker(monitor.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-monitor.stopCh:
			return
		case <-ticker.C:
			if !monitor.sample() {
				return
			}
		}
	}
}

// sample takes one reading and issues at most one pause or resume request.
// It returns false once the provider proves unsupported and the monitor
// degrades to inert.
func (monitor *Monitor) sample() bool {
	idleFor, err := monitor.provider.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			monitor.inert = true
			monitor.log.Warn("idle detection unavailable, monitor disabled", "error", err)
			return false
		}
		monitor.log.Debug("idle probe failed", "error", err)
		return true
	}

	switch {
	case idleFor >= monitor.config.Threshold && !monitor.idle:
		monitor.idle = true
		monitor.pauser.Pause(countdown.OriginIdle)
	case idleFor < monitor.config.Threshold && monitor.idle:
		monitor.idle = false
		monitor.pauser.Resume(countdown.OriginIdle)
	}
	return true
}
