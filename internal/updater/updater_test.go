package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewerVersion(t *testing.T) {
	cases := []struct {
		candidate string
		current   string
		want      bool
	}{
		{"1.2.3", "1.2.2", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.2", "1.2.3", false},
		{"2.0", "1.9.9", true},
		{"1.10.0", "1.9.0", true},
		{"v1.3.0", "1.2.0", true},
		{"1.2.3", "v1.2.4", false},
		{"1.2.3.1", "1.2.3", true},
		{"", "1.0.0", false},
		{"garbage", "1.0.0", false},
		{"1.0.0", "0.0.0-dev", true},
	}
	for _, tc := range cases {
		if got := newerVersion(tc.candidate, tc.current); got != tc.want {
			t.Errorf("newerVersion(%q, %q) = %v, want %v", tc.candidate, tc.current, got, tc.want)
		}
	}
}

func TestPromptIfAvailableNotifiesOnNewerRelease(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Release{Version: "2.0.0", URL: "https://example.com/dl"})
	}))
	defer backend.Close()

	var notified *Release
	checker := NewChecker(backend.URL, "1.0.0", func(release Release) {
		notified = &release
	}, nil)

	if !checker.PromptIfAvailable(context.Background()) {
		t.Fatal("expected a prompt for the newer release")
	}
	if notified == nil || notified.Version != "2.0.0" {
		t.Fatalf("notify payload: %+v", notified)
	}
}

func TestPromptIfAvailableQuietWhenCurrent(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Release{Version: "1.0.0"})
	}))
	defer backend.Close()

	notified := false
	checker := NewChecker(backend.URL, "1.0.0", func(Release) { notified = true }, nil)

	if checker.PromptIfAvailable(context.Background()) {
		t.Fatal("no prompt expected when already current")
	}
	if notified {
		t.Fatal("notify must not fire when already current")
	}
}

func TestPromptIfAvailableQuietOnManifestError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer backend.Close()

	checker := NewChecker(backend.URL, "1.0.0", nil, nil)
	if checker.PromptIfAvailable(context.Background()) {
		t.Fatal("manifest errors must not produce a prompt")
	}
}

func TestAvailableWithoutManifestURL(t *testing.T) {
	checker := NewChecker("", "1.0.0", nil, nil)
	_, newer, err := checker.Available(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newer {
		t.Fatal("no manifest means no update")
	}
}
