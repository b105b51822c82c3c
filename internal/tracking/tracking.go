// Package tracking sends fire-and-forget analytics events. Delivery failures
// are logged and never propagated to the caller.
package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Event names emitted by the application.
const (
	EventAppStarted    = "app_started"
	EventAppQuit       = "app_quit"
	EventDrinkReminder = "drink_reminder"
)

type payload struct {
	Event    string `json:"event"`
	DeviceID string `json:"device_id"`
	At       string `json:"at"`
}

// Tracker posts events to the analytics endpoint.
type Tracker struct {
	endpoint string
	deviceID string
	enabled  bool
	client   *http.Client
	log      *slog.Logger
}

// New creates a tracker. A disabled tracker swallows every event.
func New(endpoint, deviceID string, enabled bool, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		endpoint: endpoint,
		deviceID: deviceID,
		enabled:  enabled,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
	}
}

// Send posts one event. Errors are logged at debug level only.
func (tracker *Tracker) Send(ctx context.Context, event string) {
	if !tracker.enabled || tracker.endpoint == "" {
		return
	}

	body, err := json.Marshal(payload{
		Event:    event,
		DeviceID: tracker.deviceID,
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		tracker.log.Debug("tracking marshal failed", "event", event, "error", err)
		return
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, tracker.endpoint, bytes.NewReader(body))
	if err != nil {
		tracker.log.Debug("tracking request failed", "event", event, "error", err)
		return
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := tracker.client.Do(request)
	if err != nil {
		tracker.log.Debug("tracking send failed", "event", event, "error", err)
		return
	}
	_ = response.Body.Close()
}
