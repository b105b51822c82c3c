// Package license talks to the licensing backend. The entitlement verdict
// gates session start; callers treat any query failure as "inactive".
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Result is the backend's answer to a status or register call.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IsActive reports whether the result grants an entitlement.
func (result Result) IsActive() bool {
	return result.Status == "active" || result.Status == "trial"
}

// Manager queries and mutates the device-bound license.
type Manager struct {
	endpoint string
	deviceID string
	client   *http.Client

	mu  sync.Mutex
	key string
}

// NewManager creates a license manager for the given backend endpoint and
// device id. timeout bounds every request.
func NewManager(endpoint, deviceID string, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Manager{
		endpoint: endpoint,
		deviceID: deviceID,
		client:   &http.Client{Timeout: timeout},
	}
}

// SetKey installs a previously stored license key.
func (manager *Manager) SetKey(key string) {
	manager.mu.Lock()
	manager.key = key
	manager.mu.Unlock()
}

// Key returns the currently registered license key, if any.
func (manager *Manager) Key() string {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.key
}

// Status asks the backend whether the entitlement is active.
func (manager *Manager) Status(ctx context.Context) (bool, error) {
	query := url.Values{}
	query.Set("device", manager.deviceID)
	if key := manager.Key(); key != "" {
		query.Set("key", key)
	}

	statusURL := manager.endpoint + "/status?" + query.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}

	response, err := manager.client.Do(request)
	if err != nil {
		return false, fmt.Errorf("query license status: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return false, fmt.Errorf("license server returned %s", response.Status)
	}

	var result Result
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode license status: %w", err)
	}
	return result.IsActive(), nil
}

// Register binds a license key to this device.
func (manager *Manager) Register(ctx context.Context, key string) (Result, error) {
	payload, err := json.Marshal(map[string]string{
		"device": manager.deviceID,
		"key":    key,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal register payload: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPost, manager.endpoint+"/register", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build register request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := manager.client.Do(request)
	if err != nil {
		return Result{}, fmt.Errorf("register license: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("license server returned %s", response.Status)
	}

	var result Result
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode register response: %w", err)
	}
	if result.IsActive() {
		manager.SetKey(key)
	}
	return result, nil
}

// Reset forgets the registered key.
func (manager *Manager) Reset() {
	manager.SetKey("")
}
