// Package tray renders the system tray entry: a live countdown title and the
// quick actions. It is one more countdown subscriber; everything it shows
// comes off the event stream.
package tray

import (
	"fmt"
	"time"

	"fyne.io/systray"

	"drinknow/internal/core/countdown"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnDashboard func()
	OnDrinkNow  func()
	OnToggle    func()
	OnQuit      func()
}

// Manager handles the tray menu state.
type Manager struct {
	callbacks     Callbacks
	dashboardItem *systray.MenuItem
	drinkItem     *systray.MenuItem
	toggleItem    *systray.MenuItem
	quitItem      *systray.MenuItem
	done          chan struct{}
}

// Run starts the tray loop. It blocks until Quit is selected or systray
// exits; onReady receives the manager once the menu exists so the caller can
// attach its event subscription.
func Run(callbacks Callbacks, onReady func(*Manager)) {
	manager := &Manager{
		callbacks: callbacks,
		done:      make(chan struct{}),
	}

	systray.Run(func() {
		systray.SetTitle("Drink Now!")
		systray.SetTooltip("Drink Now!")

		manager.dashboardItem = systray.AddMenuItem("Dashboard", "Open the dashboard")
		systray.AddSeparator()
		manager.drinkItem = systray.AddMenuItem("Drink Now!", "Start a session right away")
		manager.toggleItem = systray.AddMenuItem("Pause", "Pause or resume the countdown")
		systray.AddSeparator()
		manager.quitItem = systray.AddMenuItem("Quit", "Quit Drink Now!")

		go manager.clickLoop()
		if onReady != nil {
			onReady(manager)
		}
	}, func() {
		close(manager.done)
	})
}

// Quit tears the tray down and unblocks Run.
func (manager *Manager) Quit() {
	systray.Quit()
}

// Apply refreshes the tray title and menu labels from a countdown snapshot.
func (manager *Manager) Apply(status countdown.Status) {
	systray.SetTitle(titleText(status))
	manager.dashboardItem.SetTitle(fmt.Sprintf("Dashboard (%s)", statusText(status)))
	if status.IsRunning() {
		manager.toggleItem.SetTitle("Pause")
	} else {
		manager.toggleItem.SetTitle("Resume")
	}
}

func (manager *Manager) clickLoop() {
	for {
		select {
		case <-manager.done:
			return
		case <-manager.dashboardItem.ClickedCh:
			if manager.callbacks.OnDashboard != nil {
				manager.callbacks.OnDashboard()
			}
		case <-manager.drinkItem.ClickedCh:
			if manager.callbacks.OnDrinkNow != nil {
				manager.callbacks.OnDrinkNow()
			}
		case <-manager.toggleItem.ClickedCh:
			if manager.callbacks.OnToggle != nil {
				manager.callbacks.OnToggle()
			}
		case <-manager.quitItem.ClickedCh:
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// titleText is what sits next to the tray icon: the live countdown while
// running, a short pause word otherwise.
func titleText(status countdown.Status) string {
	switch status.Phase {
	case countdown.PhaseActive:
		return formatRemaining(status.Remaining())
	case countdown.PhasePaused:
		switch status.Pause.Origin {
		case countdown.OriginIdle:
			return "Idle"
		case countdown.OriginPreventSleep:
			return "Busy"
		case countdown.OriginUser:
			return "Silent"
		}
	}
	return ""
}

func statusText(status countdown.Status) string {
	switch status.Phase {
	case countdown.PhaseNotStarted:
		return "not started"
	case countdown.PhaseActive:
		return "next sip in " + formatRemaining(status.Remaining())
	case countdown.PhasePaused:
		return "paused"
	case countdown.PhaseFinished:
		return "time to drink"
	}
	return "unknown"
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
