package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classkit/classkit/internal/audit"
	"github.com/classkit/classkit/internal/auth"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest is the request body for POST /auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authResponse is the response body for register and login: the token pair
// fields flattened alongside the identity.
type authResponse struct {
	auth.TokenPair
	Identity *auth.Identity `json:"identity"`
}

// handleRegister creates a new account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid email address")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "password must be at least 8 characters")
		return
	}

	identity, pair, err := s.accounts.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		s.logger.Error("register failed", "error", err)
		writeInternalError(w, "registration failed")
		return
	}

	s.recordAudit(r.Context(), identity.ID, identity.ID, "register", "identity", identity.ID, nil)
	writeJSON(w, http.StatusCreated, authResponse{TokenPair: *pair, Identity: identity})
}

// handleLogin verifies credentials and issues a token pair. Wrong password
// and unknown email produce identical responses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	identity, pair, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	s.recordAudit(r.Context(), identity.ID, identity.ID, "login", "identity", identity.ID, nil)
	writeJSON(w, http.StatusOK, authResponse{TokenPair: *pair, Identity: identity})
}

// handleRefresh exchanges a valid refresh token for a fresh pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	pair, err := s.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			writeUnauthorized(w, authFailedMessage)
			return
		}
		s.logger.Error("refresh failed", "error", err)
		writeInternalError(w, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleLogout acknowledges a logout. Tokens are stateless, so this is
// advisory: the client discards its tokens, and they age out at expiry.
// No auth is required; a valid bearer token only attributes the audit entry.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		if claims, err := s.tokens.Validate(token, auth.TokenTypeAccess); err == nil {
			if tenantID, resolveErr := s.tenants.Resolve(r.Context(), claims.Subject); resolveErr == nil {
				s.recordAudit(r.Context(), tenantID, claims.Subject, "logout", "identity", claims.Subject, nil)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleMe returns the authenticated account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identities.GetByID(r.Context(), subjectFrom(r))
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			writeUnauthorized(w, authFailedMessage)
			return
		}
		s.logger.Error("fetching account failed", "error", err)
		writeInternalError(w, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// recordAudit writes an audit entry, best-effort. Details must never contain
// credentials or blob contents.
func (s *Server) recordAudit(ctx context.Context, tenantID, subject, action, entityType, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, &audit.Entry{
		TenantID:   tenantID,
		Subject:    subject,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "entity_type", entityType, "error", err)
	}
}
