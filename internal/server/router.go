// Package server exposes the local command API and event stream that replace
// in-process UI wiring: dashboard, session, settings, and welcome surfaces
// attach over loopback HTTP and a WebSocket hub.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the command API routes around the given handlers.
func NewRouter(api *API) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", api.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/v1/timer", api.handleTimerStatus).Methods(http.MethodGet)
	router.HandleFunc("/v1/timer/toggle", api.handleTimerToggle).Methods(http.MethodPost)
	router.HandleFunc("/v1/timer/duration", api.handleTimerDuration).Methods(http.MethodPost)

	router.HandleFunc("/v1/session/start", api.handleSessionStart).Methods(http.MethodPost)
	router.HandleFunc("/v1/session/end", api.handleSessionEnd).Methods(http.MethodPost)

	router.HandleFunc("/v1/settings", api.handleSettingsGet).Methods(http.MethodGet)
	router.HandleFunc("/v1/settings", api.handleSettingsPut).Methods(http.MethodPut)

	router.HandleFunc("/v1/license/register", api.handleLicenseRegister).Methods(http.MethodPost)
	router.HandleFunc("/v1/license", api.handleLicenseReset).Methods(http.MethodDelete)

	router.Handle("/v1/events", api.Hub.Handler()).Methods(http.MethodGet)

	return router
}
