package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

// SessionHandler exposes the mutation orchestrator over HTTP.
type SessionHandler struct {
	service *app.SessionService
	log     *slog.Logger
}

func NewSessionHandler(service *app.SessionService, log *slog.Logger) *SessionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SessionHandler{service: service, log: log}
}

type createSessionRequest struct {
	Code       string `json:"code"`
	HostName   string `json:"hostName"`
	HostAvatar string `json:"hostAvatar"`
}

type joinSessionRequest struct {
	Name   string  `json:"name"`
	Avatar string  `json:"avatar"`
	UserID *string `json:"userId,omitempty"`
}

type submitResponseRequest struct {
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId"`
	AnswerID      string `json:"answerId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.HostName == "" {
		writeBadRequest(w, "code and hostName are required")
		return
	}

	principal := h.principal(r)
	id, err := h.service.CreateSession(r.Context(), principal, quizID, req.Code, req.HostName, req.HostAvatar)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var upd domain.SessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeBadRequest(w, "invalid update payload")
		return
	}

	principal := h.principal(r)
	if err := h.service.UpdateSession(r.Context(), principal, sessionID, upd); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) GetSessionByCode(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSessionByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var req joinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	result, err := h.service.JoinSession(r.Context(), sessionID, req.Name, req.Avatar, req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SessionHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.ParticipantID == "" || req.QuestionID == "" || req.AnswerID == "" {
		writeBadRequest(w, "participantId, questionId and answerId are required")
		return
	}

	result, err := h.service.SubmitResponse(r.Context(), req.ParticipantID, req.QuestionID, req.AnswerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SessionHandler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaders(r.Context(), chi.URLParam(r, "sessionID"), 10)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaders": entries})
}

func (h *SessionHandler) GetParticipantCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ParticipantCount(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// principal resolves the Authorization header. Absent or invalid credentials
// yield an anonymous principal; ownership checks downstream reject it.
func (h *SessionHandler) principal(r *http.Request) domain.Principal {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return domain.Principal{Role: domain.RoleAnonymous}
	}
	principal, err := h.service.VerifyToken(r.Context(), token)
	if err != nil {
		return domain.Principal{Role: domain.RoleAnonymous}
	}
	return principal
}

// reasonCodes mirror the stable rejection codes of the session engine.
var reasonCodes = map[error]string{
	domain.ErrInvalidStatus:    "InvalidStatus",
	domain.ErrNoQuestions:      "NoQuestions",
	domain.ErrSessionCodeTaken: "QuizSessionCode",
	domain.ErrSessionComplete:  "QuizSessionComplete",
	domain.ErrSessionCanceled:  "QuizSessionCanceled",
	domain.ErrInvalidQuestion:  "InvalidQuestion",
	domain.ErrQuestionOver:     "QuestionOver",
	domain.ErrInvalidAnswer:    "InvalidAnswer",
}

func (h *SessionHandler) writeError(w http.ResponseWriter, err error) {
	for target, code := range reasonCodes {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: code, Message: err.Error()})
			return
		}
	}
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NotFound", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "Unauthorized", Message: err.Error()})
	default:
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "Internal", Message: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
