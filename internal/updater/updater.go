// Package updater checks the release manifest for a newer version and hands
// the prompt off to whatever surface wants to render it.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Release describes the newest published build.
type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes,omitempty"`
}

// Checker fetches the manifest and decides whether to prompt.
type Checker struct {
	manifestURL string
	current     string
	client      *http.Client
	log         *slog.Logger
	notify      func(Release)
}

// NewChecker creates a checker for the given manifest URL and running
// version. notify is invoked when an update prompt should be surfaced.
func NewChecker(manifestURL, current string, notify func(Release), log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	if notify == nil {
		notify = func(Release) {}
	}
	return &Checker{
		manifestURL: manifestURL,
		current:     current,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
		notify:      notify,
	}
}

// Available fetches the manifest and reports whether it advertises a version
// newer than the running one.
func (checker *Checker) Available(ctx context.Context) (Release, bool, error) {
	if checker.manifestURL == "" {
		return Release{}, false, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, checker.manifestURL, nil)
	if err != nil {
		return Release{}, false, fmt.Errorf("build manifest request: %w", err)
	}

	response, err := checker.client.Do(request)
	if err != nil {
		return Release{}, false, fmt.Errorf("fetch release manifest: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Release{}, false, fmt.Errorf("manifest server returned %s", response.Status)
	}

	var release Release
	if err := json.NewDecoder(response.Body).Decode(&release); err != nil {
		return Release{}, false, fmt.Errorf("decode release manifest: %w", err)
	}
	return release, newerVersion(release.Version, checker.current), nil
}

// PromptIfAvailable surfaces an update prompt when a newer release exists
// and reports whether one was shown. Manifest errors are logged, not shown.
func (checker *Checker) PromptIfAvailable(ctx context.Context) bool {
	release, newer, err := checker.Available(ctx)
	if err != nil {
		checker.log.Warn("update check failed", "error", err)
		return false
	}
	if !newer {
		return false
	}
	checker.notify(release)
	return true
}

// newerVersion compares dotted numeric versions, ignoring a leading "v".
// Malformed segments compare as zero.
func newerVersion(candidate, current string) bool {
	if candidate == "" {
		return false
	}
	candidateParts := splitVersion(candidate)
	currentParts := splitVersion(current)
	for i := 0; i < len(candidateParts) || i < len(currentParts); i++ {
		a, b := 0, 0
		if i < len(candidateParts) {
			a = candidateParts[i]
		}
		if i < len(currentParts) {
			b = currentParts[i]
		}
		if a != b {
			return a > b
		}
	}
	return false
}

func splitVersion(version string) []int {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	segments := strings.Split(version, ".")
	parts := make([]int, 0, len(segments))
	for _, segment := range segments {
		number, err := strconv.Atoi(segment)
		if err != nil {
			number = 0
		}
		parts = append(parts, number)
	}
	return parts
}
