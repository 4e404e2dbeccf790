package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classkit/classkit/internal/timer"
)

// createPresetRequest is the request body for POST /timers/presets.
type createPresetRequest struct {
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	Theme           string `json:"theme"`
	Sound           string `json:"sound"`
	AutoStart       bool   `json:"auto_start"`
}

// handleDefaultPresets returns the built-in presets. No auth: shared
// classroom displays use these without an account.
func (s *Server) handleDefaultPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"presets": timer.DefaultPresets()})
}

// handleTimerEmbed validates embed query parameters and returns the timer
// configuration for an embedded display.
func (s *Server) handleTimerEmbed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	duration := 5 * 60
	if raw := q.Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < timer.MinDurationSeconds || parsed > timer.MaxDurationSeconds {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid duration")
			return
		}
		duration = parsed
	}

	theme := q.Get("theme")
	switch theme {
	case "":
		theme = timer.ThemeLight
	case timer.ThemeLight, timer.ThemeDark:
	default:
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid theme")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"duration_seconds": duration,
		"theme":            theme,
		"auto_start":       q.Get("autostart") == "1",
	})
}

// handleListPresets returns the caller's saved presets.
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeInternalError(w, "presets not configured")
		return
	}

	presets, err := s.presets.List(r.Context(), tenantFrom(r))
	if err != nil {
		s.logger.Error("listing presets failed", "error", err)
		writeInternalError(w, "failed to list presets")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

// handleCreatePreset saves a new preset for the caller.
func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeInternalError(w, "presets not configured")
		return
	}

	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	preset := &timer.Preset{
		TenantID:        tenantFrom(r),
		CreatedBy:       subjectFrom(r),
		Name:            req.Name,
		DurationSeconds: req.DurationSeconds,
		Theme:           req.Theme,
		Sound:           req.Sound,
		AutoStart:       req.AutoStart,
	}
	if preset.Theme == "" {
		preset.Theme = timer.ThemeLight
	}
	if !preset.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid preset")
		return
	}

	if err := s.presets.Create(r.Context(), preset); err != nil {
		s.logger.Error("creating preset failed", "error", err)
		writeInternalError(w, "failed to create preset")
		return
	}

	s.recordAudit(r.Context(), preset.TenantID, preset.CreatedBy, "create", "timer_preset", preset.ID,
		map[string]any{"name": preset.Name})
	writeJSON(w, http.StatusCreated, preset)
}

// handleDeletePreset removes a saved preset within the caller's tenant.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeInternalError(w, "presets not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.presets.Delete(r.Context(), tenantFrom(r), id); err != nil {
		if errors.Is(err, timer.ErrPresetNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("deleting preset failed", "error", err)
		writeInternalError(w, "failed to delete preset")
		return
	}

	s.recordAudit(r.Context(), tenantFrom(r), subjectFrom(r), "delete", "timer_preset", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
