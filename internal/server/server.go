package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"drinknow/internal/alert"
	"drinknow/internal/core/countdown"
	"drinknow/internal/core/model"
	"drinknow/internal/updater"
)

// Server hosts the command API and event stream on a loopback address.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	log        *slog.Logger
}

// New creates the server around the given API dependencies.
func New(bind string, api *API, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              bind,
			Handler:           NewRouter(api),
			ReadHeaderTimeout: 5 * time.Second,
		},
		hub: api.Hub,
		log: log,
	}
}

// Start runs the hub loop and the HTTP listener. It returns once the
// listener stops; a clean Shutdown is not reported as an error.
func (server *Server) Start() error {
	go server.hub.Run()
	server.log.Info("command api listening", "addr", server.httpServer.Addr)
	if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and drops all event stream clients.
func (server *Server) Shutdown(ctx context.Context) error {
	err := server.httpServer.Shutdown(ctx)
	server.hub.Close()
	return err
}

// PumpCountdown forwards countdown events to the hub until the stream ends.
// Run it in a goroutine with a subscription owned by the caller.
func PumpCountdown(hub *Hub, events <-chan countdown.Event) {
	for event := range events {
		hub.Broadcast(FrameCountdown, event)
	}
}

// PumpSessions forwards session handoffs to the hub until the stream ends.
func PumpSessions(hub *Hub, starts <-chan model.SessionStartEvent) {
	for start := range starts {
		hub.Broadcast(FrameSessionStart, start)
	}
}

// UIBridge adapts the out-of-process UI surfaces to hub broadcasts. It is
// the session orchestrator's Surfaces collaborator.
type UIBridge struct {
	hub *Hub

	// FeedbackShown is invoked after the feedback prompt is surfaced so the
	// bookkeeper can retire it.
	FeedbackShown func()
}

// NewUIBridge creates a bridge broadcasting over hub.
func NewUIBridge(hub *Hub) *UIBridge {
	return &UIBridge{hub: hub}
}

// ShowDashboard asks the dashboard surface to open.
func (bridge *UIBridge) ShowDashboard() {
	bridge.hub.Broadcast(FrameDashboard, nil)
}

// HideSession tells the session surface to hide itself.
func (bridge *UIBridge) HideSession() {
	bridge.hub.Broadcast(FrameSessionHide, nil)
}

// ShowWelcome routes the user to the welcome/payment flow.
func (bridge *UIBridge) ShowWelcome() {
	bridge.hub.Broadcast(FrameWelcome, map[string]string{"mode": "only_payment"})
}

// ShowFeedback surfaces the one-time feedback prompt.
func (bridge *UIBridge) ShowFeedback() {
	bridge.hub.Broadcast(FrameFeedback, nil)
	if bridge.FeedbackShown != nil {
		bridge.FeedbackShown()
	}
}

// NotifyUpdate surfaces an update prompt; wired as the updater's notify
// callback.
func (bridge *UIBridge) NotifyUpdate(release updater.Release) {
	bridge.hub.Broadcast(FrameUpdateAvailable, release)
}

// NotifyAlert forwards alerts to attached surfaces; wired as an alert sink.
func (bridge *UIBridge) NotifyAlert(entry alert.Alert) {
	bridge.hub.Broadcast(FrameAlert, entry)
}
