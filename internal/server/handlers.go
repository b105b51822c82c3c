package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"drinknow/internal/core/countdown"
	"drinknow/internal/core/model"
	"drinknow/internal/license"
	"drinknow/internal/storage"
)

// SessionStarter is the slice of the orchestrator the API drives.
type SessionStarter interface {
	StartSession(ctx context.Context, overwrite *model.SessionStartEvent)
	EndSession(ctx context.Context, demoMode bool)
}

// API holds the handler dependencies for the local command surface.
type API struct {
	AppName  string
	Timer    *countdown.Timer
	Sessions SessionStarter
	License  *license.Manager
	Hub      *Hub
	Log      *slog.Logger

	// Settings accessors go through main so the timer and autostart stay in
	// step with what is persisted.
	LoadSettings func() model.Settings
	SaveSettings func(model.Settings) error
	System       *storage.System
}

func (api *API) handleTimerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Timer.Status())
}

func (api *API) handleTimerToggle(w http.ResponseWriter, r *http.Request) {
	api.Timer.Toggle()
	writeJSON(w, http.StatusOK, api.Timer.Status())
}

type durationRequest struct {
	Minutes int `json:"minutes"`
}

func (api *API) handleTimerDuration(w http.ResponseWriter, r *http.Request) {
	var request durationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if request.Minutes <= 0 {
		http.Error(w, "minutes must be positive", http.StatusBadRequest)
		return
	}

	api.Timer.SetDuration(time.Duration(request.Minutes) * time.Minute)

	settings := api.LoadSettings()
	settings.NextBreakMinutes = request.Minutes
	if err := api.SaveSettings(settings); err != nil {
		api.Log.Error("persist settings failed", "error", err)
		http.Error(w, "settings could not be saved", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var overwrite *model.SessionStartEvent
	if r.ContentLength != 0 {
		overwrite = &model.SessionStartEvent{}
		if err := json.NewDecoder(r.Body).Decode(overwrite); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
	}
	api.Sessions.StartSession(r.Context(), overwrite)
	w.WriteHeader(http.StatusAccepted)
}

type endSessionRequest struct {
	DemoMode bool `json:"demo_mode"`
}

func (api *API) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var request endSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
	}
	api.Sessions.EndSession(r.Context(), request.DemoMode)
	w.WriteHeader(http.StatusAccepted)
}

type settingsDocument struct {
	NextBreakMinutes int    `json:"next_break_minutes"`
	SipSize          string `json:"sip_size"`
	Character        string `json:"character"`
	Autostart        bool   `json:"autostart"`
	SessionCount     int    `json:"session_count"`
}

func (api *API) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings := api.LoadSettings()
	writeJSON(w, http.StatusOK, settingsDocument{
		NextBreakMinutes: settings.NextBreakMinutes,
		SipSize:          string(settings.SipSize),
		Character:        string(settings.Character),
		Autostart:        settings.Autostart,
		SessionCount:     api.System.SessionCount(),
	})
}

func (api *API) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var document settingsDocument
	if err := json.NewDecoder(r.Body).Decode(&document); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if document.NextBreakMinutes <= 0 {
		http.Error(w, "next_break_minutes must be positive", http.StatusBadRequest)
		return
	}

	settings := model.Settings{
		NextBreakMinutes: document.NextBreakMinutes,
		SipSize:          model.SipSize(document.SipSize),
		Character:        model.DrinkCharacter(document.Character),
		Autostart:        document.Autostart,
	}
	if err := api.SaveSettings(settings); err != nil {
		api.Log.Error("persist settings failed", "error", err)
		http.Error(w, "settings could not be saved", http.StatusInternalServerError)
		return
	}
	api.Timer.SetDuration(settings.NextBreakDuration())
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	Key string `json:"key"`
}

func (api *API) handleLicenseRegister(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Key == "" {
		http.Error(w, "license key missing", http.StatusBadRequest)
		return
	}

	result, err := api.License.Register(r.Context(), request.Key)
	if err != nil {
		api.Log.Error("license registration failed", "error", err)
		http.Error(w, "license server unreachable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleLicenseReset(w http.ResponseWriter, r *http.Request) {
	api.License.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"app": api.AppName, "status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
