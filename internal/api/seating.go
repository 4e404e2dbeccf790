package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classkit/classkit/internal/resource"
	"github.com/classkit/classkit/internal/seating"
)

// createChartRequest is the request body for POST /seating-charts.
type createChartRequest struct {
	Name          string         `json:"name"`
	RosterID      string         `json:"roster_id"`
	Layout        seating.Layout `json:"layout"`
	EncryptedData string         `json:"encrypted_data"`
	EncryptionIV  string         `json:"encryption_iv"`
}

// updateChartRequest is the request body for PUT /seating-charts/{id}.
// Absent fields are left unchanged. The roster binding cannot change.
type updateChartRequest struct {
	Name          *string         `json:"name"`
	Layout        *seating.Layout `json:"layout"`
	EncryptedData *string         `json:"encrypted_data"`
	EncryptionIV  *string         `json:"encryption_iv"`
}

// handleListCharts returns the caller's seating charts, optionally filtered
// by ?roster_id=.
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.charts.List(r.Context(), tenantFrom(r), r.URL.Query().Get("roster_id"))
	if err != nil {
		s.logger.Error("listing seating charts failed", "error", err)
		writeInternalError(w, "failed to list seating charts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"seating_charts": charts})
}

// handleCreateChart stores a new seating chart. The referenced roster must
// exist in the caller's tenant; a roster it cannot see cannot be referenced.
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var req createChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	if req.RosterID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "roster_id is required")
		return
	}
	if !req.Layout.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid layout")
		return
	}
	if req.EncryptedData == "" || req.EncryptionIV == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "encrypted_data and encryption_iv are required")
		return
	}

	tenantID := tenantFrom(r)
	if _, err := s.rosters.Get(r.Context(), tenantID, req.RosterID); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("verifying roster failed", "error", err)
		writeInternalError(w, "failed to create seating chart")
		return
	}

	chart := &seating.Chart{
		TenantID:  tenantID,
		CreatedBy: subjectFrom(r),
		Name:      req.Name,
		RosterID:  req.RosterID,
		Layout:    req.Layout,
		Blob:      resource.Blob{Ciphertext: req.EncryptedData, Nonce: req.EncryptionIV},
	}
	if err := s.charts.Create(r.Context(), chart); err != nil {
		s.logger.Error("creating seating chart failed", "error", err)
		writeInternalError(w, "failed to create seating chart")
		return
	}

	s.recordAudit(r.Context(), chart.TenantID, chart.CreatedBy, "create", "seating_chart", chart.ID,
		map[string]any{"name": chart.Name, "roster_id": chart.RosterID})
	writeJSON(w, http.StatusCreated, chart)
}

// handleGetChart returns one seating chart within the caller's tenant.
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.charts.Get(r.Context(), tenantFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("fetching seating chart failed", "error", err)
		writeInternalError(w, "failed to fetch seating chart")
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// handleUpdateChart applies a partial update to a seating chart.
func (s *Server) handleUpdateChart(w http.ResponseWriter, r *http.Request) {
	var req updateChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	upd := seating.Update{
		Name:       req.Name,
		Layout:     req.Layout,
		Ciphertext: req.EncryptedData,
		Nonce:      req.EncryptionIV,
	}
	if upd.Empty() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "no fields to update")
		return
	}
	if req.Name != nil && *req.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name cannot be empty")
		return
	}
	if req.Layout != nil && !req.Layout.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid layout")
		return
	}

	chart, err := s.charts.Update(r.Context(), tenantFrom(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("updating seating chart failed", "error", err)
		writeInternalError(w, "failed to update seating chart")
		return
	}

	s.recordAudit(r.Context(), chart.TenantID, subjectFrom(r), "update", "seating_chart", chart.ID, nil)
	writeJSON(w, http.StatusOK, chart)
}

// handleDeleteChart removes a seating chart within the caller's tenant.
func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.charts.Delete(r.Context(), tenantFrom(r), id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("deleting seating chart failed", "error", err)
		writeInternalError(w, "failed to delete seating chart")
		return
	}

	s.recordAudit(r.Context(), tenantFrom(r), subjectFrom(r), "delete", "seating_chart", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
