package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"drinknow/internal/core/model"
)

// pointConfigDirAt redirects os.UserConfigDir into a temp dir. Only the XDG
// lookup honors the override, so these tests run on Linux.
func pointConfigDirAt(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("config dir override requires XDG")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	pointConfigDirAt(t)

	settings, err := LoadSettings("DrinkNowTest")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings != model.DefaultSettings() {
		t.Fatalf("got %+v, want defaults", settings)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	pointConfigDirAt(t)

	saved := model.Settings{
		NextBreakMinutes: 20,
		SipSize:          model.MediumSip,
		Character:        model.Robot,
		Autostart:        false,
	}
	if err := SaveSettings("DrinkNowTest", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadSettings("DrinkNowTest")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != saved {
		t.Fatalf("round trip: got %+v, want %+v", loaded, saved)
	}
}

func TestLoadSettingsIgnoresUnknownEnumValues(t *testing.T) {
	dir := pointConfigDirAt(t)

	appDir := filepath.Join(dir, "DrinkNowTest")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := "next_break_minutes: -5\nsip_size: gulp\ncharacter: wizard\nautostart: true\n"
	if err := os.WriteFile(filepath.Join(appDir, settingsFileName), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := LoadSettings("DrinkNowTest")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defaults := model.DefaultSettings()
	if settings.NextBreakMinutes != defaults.NextBreakMinutes {
		t.Fatalf("break minutes: got %d", settings.NextBreakMinutes)
	}
	if settings.SipSize != defaults.SipSize {
		t.Fatalf("sip size: got %q", settings.SipSize)
	}
	if settings.Character != defaults.Character {
		t.Fatalf("character: got %q", settings.Character)
	}
	if !settings.Autostart {
		t.Fatal("autostart: explicit value should apply")
	}
}
