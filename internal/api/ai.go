package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classkit/classkit/internal/ai"
)

// maxPromptLength caps prompt size in characters.
const maxPromptLength = 8000

// maxResponseTokens caps the response token budget a client may request.
const maxResponseTokens = 4096

// generateRequest is the request body for POST /ai/generate.
type generateRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// handleAIGenerate proxies a prompt to the local Ollama instance.
func (s *Server) handleAIGenerate(w http.ResponseWriter, r *http.Request) {
	if s.ai == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "ai service not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "prompt is required")
		return
	}
	if len(req.Prompt) > maxPromptLength {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "prompt too long")
		return
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "temperature must be between 0 and 2")
		return
	}
	if req.MaxTokens < 0 || req.MaxTokens > maxResponseTokens {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "max_tokens out of range")
		return
	}

	response, err := s.ai.Generate(r.Context(), req.Prompt, ai.GenerateOptions{
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "ai service unavailable")
			return
		}
		s.logger.Error("ai generate failed", "error", err)
		writeInternalError(w, "generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response": response,
		"model":    s.ai.Model(),
	})
}

// handleAIStatus reports whether the local AI service is reachable.
func (s *Server) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"configured": s.ai != nil,
		"available":  false,
	}
	if s.ai != nil {
		status["model"] = s.ai.Model()
		status["available"] = s.ai.HealthCheck(r.Context()) == nil
	}

	writeJSON(w, http.StatusOK, status)
}
