package api

import (
	"net/http"
	"strconv"

	"github.com/classkit/classkit/internal/audit"
)

// handleListAudit returns the caller's audit trail, most recent first.
// Supported query parameters: action, entity_type, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeInternalError(w, "audit not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		TenantID:   tenantFrom(r),
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))   //nolint:errcheck // zero means default
	filter.Offset, _ = strconv.Atoi(q.Get("offset")) //nolint:errcheck // zero means first page

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
