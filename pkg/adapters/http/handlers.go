package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/go-chi/chi/v5"
)

// AdvanceRequest is the body of POST /v1/advance.
// Catalog rows are loosely typed and go through catalog.Decode.
type AdvanceRequest struct {
	TenantID       string           `json:"tenantId"`
	ConversationID string           `json:"conversationId"`
	RawAnswer      string           `json:"rawAnswer"`
	Catalog        []map[string]any `json:"catalog"`
	PriorSession   *domain.Session  `json:"priorSession,omitempty"`
}

// AnswerRequest is the body of POST .../answers.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body of every non-2xx response except validation results.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Advance handles POST /v1/advance: one stateless engine call.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	questions, err := catalog.Decode(body.Catalog)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid catalog", err)
		return
	}

	answer, err := runner.SanitizeInput(body.RawAnswer)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid input", err)
		return
	}

	result := s.Engine.Advance(r.Context(), domain.Request{
		TenantID:       body.TenantID,
		ConversationID: body.ConversationID,
		RawAnswer:      answer,
		Catalog:        questions,
		PriorSession:   body.PriorSession,
	})
	respondResult(w, result)
}

// PostAnswer handles POST /v1/tenants/{tenantID}/conversations/{conversationID}/answers.
func (s *Server) PostAnswer(w http.ResponseWriter, r *http.Request) {
	tenantID, conversationID := pathIDs(r)

	var body AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.Conversations.Answer(r.Context(), tenantID, conversationID, body.Answer)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result.Persistable() {
		if payload, err := json.Marshal(result); err == nil {
			s.Streams.Broadcast(streamKey(tenantID, conversationID), string(payload))
		}
	}
	respondResult(w, result)
}

// GetSession handles GET /v1/tenants/{tenantID}/conversations/{conversationID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	tenantID, conversationID := pathIDs(r)

	session, err := s.Conversations.Session(r.Context(), tenantID, conversationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ResetSession handles DELETE /v1/tenants/{tenantID}/conversations/{conversationID}.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	tenantID, conversationID := pathIDs(r)

	if err := s.Conversations.Reset(r.Context(), tenantID, conversationID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /v1/info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"app":           "qualifica-http",
		"version":       strings.TrimSpace(qualifica.Version),
		"conversations": s.Conversations != nil,
	})
}

// -- Helpers --

func pathIDs(r *http.Request) (tenantID, conversationID string) {
	return chi.URLParam(r, "tenantID"), chi.URLParam(r, "conversationID")
}

func streamKey(tenantID, conversationID string) string {
	return domain.SessionKey(strings.TrimSpace(tenantID), qualifica.NormalizeConversationID(conversationID))
}

// respondResult writes an engine result; validation errors are 422 with the result as body.
func respondResult(w http.ResponseWriter, result domain.Result) {
	status := http.StatusOK
	if !result.Persistable() {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error(message, "err", err)
	} else {
		slog.Warn(message, "err", err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8), errors.Is(err, runner.ErrControlOnly):
		respondError(w, http.StatusBadRequest, "invalid input", err)
	case errors.Is(err, domain.ErrInvalidSessionKey):
		respondError(w, http.StatusBadRequest, "invalid conversation", err)
	case errors.Is(err, domain.ErrCatalogNotFound), errors.Is(err, domain.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, domain.ErrSessionConflict):
		respondError(w, http.StatusConflict, "conversation changed concurrently", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal server error", err)
	}
}
