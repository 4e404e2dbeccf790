package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classkit/classkit/internal/resource"
	"github.com/classkit/classkit/internal/roster"
)

// notFoundMessage is the single deny message for resource endpoints. Absent
// IDs and other tenants' IDs read identically.
const notFoundMessage = "resource not found"

// createRosterRequest is the request body for POST /rosters.
type createRosterRequest struct {
	Name          string `json:"name"`
	EncryptedData string `json:"encrypted_data"`
	EncryptionIV  string `json:"encryption_iv"`
}

// updateRosterRequest is the request body for PUT /rosters/{id}.
// Absent fields are left unchanged.
type updateRosterRequest struct {
	Name          *string `json:"name"`
	EncryptedData *string `json:"encrypted_data"`
	EncryptionIV  *string `json:"encryption_iv"`
}

// handleListRosters returns the caller's rosters.
func (s *Server) handleListRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := s.rosters.List(r.Context(), tenantFrom(r))
	if err != nil {
		s.logger.Error("listing rosters failed", "error", err)
		writeInternalError(w, "failed to list rosters")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rosters": rosters})
}

// handleCreateRoster stores a new encrypted roster.
func (s *Server) handleCreateRoster(w http.ResponseWriter, r *http.Request) {
	var req createRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	if req.EncryptedData == "" || req.EncryptionIV == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "encrypted_data and encryption_iv are required")
		return
	}

	entry := &roster.Roster{
		TenantID:  tenantFrom(r),
		CreatedBy: subjectFrom(r),
		Name:      req.Name,
		Blob:      resource.Blob{Ciphertext: req.EncryptedData, Nonce: req.EncryptionIV},
	}
	if err := s.rosters.Create(r.Context(), entry); err != nil {
		s.logger.Error("creating roster failed", "error", err)
		writeInternalError(w, "failed to create roster")
		return
	}

	s.recordAudit(r.Context(), entry.TenantID, entry.CreatedBy, "create", "roster", entry.ID,
		map[string]any{"name": entry.Name})
	writeJSON(w, http.StatusCreated, entry)
}

// handleGetRoster returns one roster within the caller's tenant.
func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	entry, err := s.rosters.Get(r.Context(), tenantFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("fetching roster failed", "error", err)
		writeInternalError(w, "failed to fetch roster")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// handleUpdateRoster applies a partial update to a roster.
func (s *Server) handleUpdateRoster(w http.ResponseWriter, r *http.Request) {
	var req updateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	upd := roster.Update{
		Name:       req.Name,
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

	entry, err := s.rosters.Update(r.Context(), tenantFrom(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("updating roster failed", "error", err)
		writeInternalError(w, "failed to update roster")
		return
	}

	s.recordAudit(r.Context(), entry.TenantID, subjectFrom(r), "update", "roster", entry.ID, nil)
	writeJSON(w, http.StatusOK, entry)
}

// handleDeleteRoster removes a roster within the caller's tenant.
func (s *Server) handleDeleteRoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.rosters.Delete(r.Context(), tenantFrom(r), id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, notFoundMessage)
			return
		}
		s.logger.Error("deleting roster failed", "error", err)
		writeInternalError(w, "failed to delete roster")
		return
	}

	s.recordAudit(r.Context(), tenantFrom(r), subjectFrom(r), "delete", "roster", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
