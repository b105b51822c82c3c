package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"drinknow/internal/alert"
	"drinknow/internal/config"
	"drinknow/internal/core/countdown"
	"drinknow/internal/core/idle"
	"drinknow/internal/core/model"
	"drinknow/internal/core/session"
	"drinknow/internal/core/sleep"
	"drinknow/internal/license"
	"drinknow/internal/platform"
	"drinknow/internal/server"
	"drinknow/internal/storage"
	"drinknow/internal/tracking"
	"drinknow/internal/ui/tray"
	"drinknow/internal/updater"
)

const appName = "DrinkNow"

// appVersion is stamped by the release build.
var appVersion = "0.0.0-dev"

func main() {
	configPath := pflag.String("config", "", "path to the daemon config TOML (default: user config dir)")
	quiet := pflag.Bool("quiet", false, "do not open the dashboard on launch (used by autostart)")
	demo := pflag.Bool("demo", false, "start a demo session right away")
	pflag.Parse()

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			// Wake the running instance so it opens its dashboard.
			platform.PingRunningInstance(appName)
			return
		}
		slog.Error("single instance", "error", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		slog.Error("load config", "error", err)
		return
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(log)

	alerts := alert.NewNotifier(log)

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		alerts.Alert("Can't load settings", "Your settings could not be read; defaults are in effect.", err)
	}
	system, err := storage.OpenSystem(appName)
	if err != nil {
		log.Error("open system state", "error", err)
		return
	}
	deviceID, err := license.LoadDeviceID(appName)
	if err != nil {
		log.Error("load device id", "error", err)
		return
	}
	log.Info("application start", "device_id", deviceID, "version", appVersion)

	tracker := tracking.New(cfg.Tracking.Endpoint, deviceID, cfg.Tracking.Enabled, log)
	tracker.Send(context.Background(), tracking.EventAppStarted)

	licenses := license.NewManager(cfg.License.Endpoint, deviceID, cfg.LicenseTimeout())

	store := newSettingsStore(settings, log)

	timer := countdown.New(store.Load().NextBreakDuration(), countdown.Config{
		TickInterval: cfg.TickInterval(),
	})

	hub := server.NewHub()
	bridge := server.NewUIBridge(hub)
	bridge.FeedbackShown = func() {
		if err := system.MarkFeedbackShown(); err != nil {
			log.Error("persist feedback state", "error", err)
		}
	}
	alerts.AddSink(bridge.NotifyAlert)

	updates := updater.NewChecker(cfg.Updater.ManifestURL, appVersion, bridge.NotifyUpdate, log)

	orch := session.New(timer, session.Collaborators{
		License:  licenses,
		Book:     system,
		Tracking: tracker,
		Alert:    alerts,
		Surfaces: bridge,
		Updater:  updates,
		Settings: store.Load,
	}, cfg.LicenseTimeout(), log)

	ctx, cancel := context.WithCancel(context.Background())

	orchEvents, _ := timer.Subscribe()
	go orch.Run(ctx, orchEvents)

	hubEvents, _ := timer.Subscribe()
	go server.PumpCountdown(hub, hubEvents)

	starts, _ := orch.Starts()
	go server.PumpSessions(hub, starts)

	srv := server.New(cfg.Server.Bind, &server.API{
		AppName:      appName,
		Timer:        timer,
		Sessions:     orch,
		License:      licenses,
		Hub:          hub,
		Log:          log,
		LoadSettings: store.Load,
		SaveSettings: store.Save,
		System:       system,
	}, log)
	go func() {
		if err := srv.Start(); err != nil {
			alerts.Alert("Command API failed", "The local command API could not start.", err)
		}
	}()

	idleMonitor := idle.NewMonitor(platform.NewIdleProvider(), timer, idle.Config{
		Threshold:      cfg.IdleThreshold(),
		SampleInterval: cfg.IdleSampleInterval(),
	}, log)
	idleMonitor.Start()

	sleepMonitor := sleep.NewMonitor(platform.NewSleepNotifier(), timer, log)
	sleepMonitor.Start()

	applyAutostart(store.Load(), log)

	guard.NotifyOnConnect(bridge.ShowDashboard)
	if !*quiet {
		bridge.ShowDashboard()
	}

	if err := timer.Start(store.Load().NextBreakDuration()); err != nil {
		log.Debug("timer already running", "error", err)
	}

	if *demo {
		go orch.StartSession(ctx, &model.SessionStartEvent{
			SipSize:                store.Load().SipSize,
			SelectedDrinkCharacter: store.Load().Character,
			DemoMode:               true,
		})
	}

	tray.Run(tray.Callbacks{
		OnDashboard: bridge.ShowDashboard,
		OnDrinkNow: func() {
			go orch.StartSession(ctx, nil)
		},
		OnToggle: timer.Toggle,
		OnQuit: func() {
			log.Info("closing Drink Now, stop timer")
			tracker.Send(context.Background(), tracking.EventAppQuit)

			idleMonitor.Stop()
			sleepMonitor.Stop()
			cancel()
			timer.Stop()
			orch.Close()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("server shutdown", "error", err)
			}
		},
	}, func(manager *tray.Manager) {
		manager.Apply(timer.Status())
		events, cancelSub := timer.Subscribe()
		go func() {
			defer cancelSub()
			for event := range events {
				manager.Apply(event.Status)
			}
		}()
	})
}

// settingsStore serializes settings access between the command API, the
// session orchestrator, and the tray.
type settingsStore struct {
	mu       sync.Mutex
	settings model.Settings
	log      *slog.Logger
}

func newSettingsStore(settings model.Settings, log *slog.Logger) *settingsStore {
	return &settingsStore{settings: settings, log: log}
}

func (store *settingsStore) Load() model.Settings {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.settings
}

func (store *settingsStore) Save(settings model.Settings) error {
	store.mu.Lock()
	previous := store.settings
	store.settings = settings
	store.mu.Unlock()

	if err := storage.SaveSettings(appName, settings); err != nil {
		return err
	}
	if previous.Autostart != settings.Autostart {
		applyAutostart(settings, store.log)
	}
	return nil
}

func applyAutostart(settings model.Settings, log *slog.Logger) {
	service := platform.NewService()
	if settings.Autostart {
		execPath, err := os.Executable()
		if err != nil {
			log.Warn("resolve executable for autostart", "error", err)
			return
		}
		if err := service.EnableAutostart(appName, execPath); err != nil {
			log.Warn("enable autostart", "error", err)
		}
		return
	}
	if err := service.DisableAutostart(appName); err != nil {
		log.Warn("disable autostart", "error", err)
	}
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, appName, "config.toml")
}
