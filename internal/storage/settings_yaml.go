package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"drinknow/internal/core/model"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	NextBreakMinutes int    `yaml:"next_break_minutes"`
	SipSize          string `yaml:"sip_size"`
	Character        string `yaml:"character"`
	Autostart        bool   `yaml:"autostart"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (model.Settings, error) {
	settings := model.DefaultSettings()
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings model.Settings) error {
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		NextBreakMinutes: settings.NextBreakMinutes,
		SipSize:          string(settings.SipSize),
		Character:        string(settings.Character),
		Autostart:        settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName, fileName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if fileData.NextBreakMinutes > 0 {
		settings.NextBreakMinutes = fileData.NextBreakMinutes
	}
	switch model.SipSize(fileData.SipSize) {
	case model.SmallSip, model.MediumSip, model.BigSip:
		settings.SipSize = model.SipSize(fileData.SipSize)
	}
	switch model.DrinkCharacter(fileData.Character) {
	case model.YoungWoman, model.YoungMan, model.Knight, model.Robot:
		settings.Character = model.DrinkCharacter(fileData.Character)
	}
	settings.Autostart = fileData.Autostart
}
