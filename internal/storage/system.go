package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const systemFileName = "system.yaml"

// feedbackAfterSessions is how many completed sessions we wait before asking
// for feedback once.
const feedbackAfterSessions = 10

type systemState struct {
	SessionCount  int  `yaml:"session_count"`
	FeedbackShown bool `yaml:"feedback_shown"`
}

// System holds the app-managed bookkeeping that is not a user preference:
// the lifetime session counter and whether the feedback prompt was used up.
type System struct {
	mu    sync.Mutex
	path  string
	state systemState
}

// OpenSystem loads (or initializes) the system state for appName in the user
// config directory.
func OpenSystem(appName string) (*System, error) {
	path, err := resolveConfigPath(appName, systemFileName)
	if err != nil {
		return nil, err
	}
	return OpenSystemFile(path)
}

// OpenSystemFile loads (or initializes) the system state at an explicit path.
func OpenSystemFile(path string) (*System, error) {
	system := &System{path: path}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return system, nil
		}
		return nil, fmt.Errorf("read system state: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &system.state); err != nil {
		return nil, fmt.Errorf("parse system state yaml: %w", err)
	}
	return system, nil
}

// SessionCount returns the number of completed sessions.
func (system *System) SessionCount() int {
	system.mu.Lock()
	defer system.mu.Unlock()
	return system.state.SessionCount
}

// IncreaseSessionCount bumps the session counter and persists it.
func (system *System) IncreaseSessionCount() error {
	system.mu.Lock()
	defer system.mu.Unlock()
	system.state.SessionCount++
	return system.persistLocked()
}

// ShouldShowFeedback reports whether the one-time feedback prompt is due.
func (system *System) ShouldShowFeedback() bool {
	system.mu.Lock()
	defer system.mu.Unlock()
	return !system.state.FeedbackShown && system.state.SessionCount >= feedbackAfterSessions
}

// MarkFeedbackShown records that the feedback prompt was surfaced so it is
// never shown again.
func (system *System) MarkFeedbackShown() error {
	system.mu.Lock()
	defer system.mu.Unlock()
	if system.state.FeedbackShown {
		return nil
	}
	system.state.FeedbackShown = true
	return system.persistLocked()
}

func (system *System) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(system.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(system.state)
	if err != nil {
		return fmt.Errorf("marshal system state yaml: %w", err)
	}
	if err := os.WriteFile(system.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write system state: %w", err)
	}
	return nil
}
