package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-session-service/internal/domain"
)

// Store abstracts durable session, participant, and response persistence.
// Every mutation the service performs is a read-modify-write against it.
type Store interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	GetSessionByCode(ctx context.Context, code string) (domain.Session, error)
	UpdateSession(ctx context.Context, id string, upd domain.SessionUpdate) error

	CreateParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	CountParticipants(ctx context.Context, sessionID string) (int64, error)
	// SetParticipantPoints overwrites the running score. Duplicate
	// submissions for one question are not rejected anywhere in this path.
	SetParticipantPoints(ctx context.Context, participantID string, points int) error
	ListLeaders(ctx context.Context, sessionID string, limit int) ([]domain.LeaderboardEntry, error)

	CreateResponse(ctx context.Context, response domain.Response) error
	CountResponses(ctx context.Context, questionID string) (int64, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// IdentityVerifier turns an opaque credential into a principal.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// SessionService is the mutation orchestrator: it combines the transition
// rules, the store, and the hub for host updates, joins, and scoring.
type SessionService struct {
	store    Store
	quizzes  QuizRepository
	verifier IdentityVerifier
	hub      *Hub
	log      *slog.Logger
	now      func() time.Time
}

func NewSessionService(store Store, quizzes QuizRepository, verifier IdentityVerifier, hub *Hub) *SessionService {
	return &SessionService{
		store:    store,
		quizzes:  quizzes,
		verifier: verifier,
		hub:      hub,
		log:      slog.Default(),
		now:      time.Now,
	}
}

// WithClock is test-only for deterministic deadlines.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Hub exposes the fanout registry for connection handlers.
func (s *SessionService) Hub() *Hub {
	return s.hub
}

// CreateSession opens a new session in Ready for the given quiz. Codes are
// matched case-insensitively and must be unique across sessions.
func (s *SessionService) CreateSession(ctx context.Context, principal domain.Principal, quizID, code, hostName, hostAvatar string) (string, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	if !principal.CanActFor(quiz.UserID) {
		return "", domain.ErrUnauthorized
	}

	code = strings.ToLower(code)
	if _, err := s.store.GetSessionByCode(ctx, code); err == nil {
		return "", domain.ErrSessionCodeTaken
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		return "", err
	}

	now := s.now()
	session := domain.Session{
		ID:               uuid.NewString(),
		QuizID:           quiz.ID,
		HostID:           quiz.UserID,
		Code:             code,
		HostName:         hostName,
		HostAvatar:       hostAvatar,
		Status:           domain.StatusReady,
		QuestionDuration: domain.DefaultQuestionDuration,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// JoinResult reports a successful join.
type JoinResult struct {
	ParticipantID    string `json:"id"`
	ParticipantCount int64  `json:"count"`
}

// JoinSession creates a participant for a non-terminal session and notifies
// the host of the new total.
func (s *SessionService) JoinSession(ctx context.Context, sessionID, name, avatar string, userID *string) (JoinResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return JoinResult{}, err
	}
	switch session.Status {
	case domain.StatusComplete:
		return JoinResult{}, domain.ErrSessionComplete
	case domain.StatusCanceled:
		return JoinResult{}, domain.ErrSessionCanceled
	}

	participant := domain.Participant{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    userID,
		Name:      name,
		Avatar:    avatar,
		Points:    0,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		return JoinResult{}, err
	}

	count, err := s.store.CountParticipants(ctx, session.ID)
	if err != nil {
		return JoinResult{}, err
	}
	s.publish(session.ID, domain.JoinedEvent(count))

	return JoinResult{ParticipantID: participant.ID, ParticipantCount: count}, nil
}

// UpdateSession validates a host-issued update, persists it, then broadcasts
// the implied events. A store failure aborts before anything is published.
func (s *SessionService) UpdateSession(ctx context.Context, principal domain.Principal, sessionID string, upd domain.SessionUpdate) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return err
	}
	if !principal.CanActFor(quiz.UserID) {
		return domain.ErrUnauthorized
	}
	if err := ValidateUpdate(session, quiz, upd); err != nil {
		return err
	}

	if upd.Code != nil {
		lower := strings.ToLower(*upd.Code)
		upd.Code = &lower
	}
	if err := s.store.UpdateSession(ctx, session.ID, upd); err != nil {
		return err
	}

	for _, ev := range ImpliedEvents(session, upd) {
		s.publish(session.ID, ev)
	}
	return nil
}

// SubmitResult reports an accepted answer submission.
type SubmitResult struct {
	ResponseID            string `json:"id"`
	IsCorrect             bool   `json:"isCorrect"`
	QuestionResponseCount int64  `json:"questionResponseCount"`
}

// SubmitResponse validates one answer against the session's active question
// and deadline, persists it, and updates the participant's score.
func (s *SessionService) SubmitResponse(ctx context.Context, participantID, questionID, answerID string) (SubmitResult, error) {
	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return SubmitResult{}, err
	}
	session, err := s.store.GetSession(ctx, participant.SessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}

	if session.QuestionIndex == nil {
		return SubmitResult{}, domain.ErrInvalidQuestion
	}
	activeID, ok := quiz.ActiveQuestionID(*session.QuestionIndex)
	if !ok || activeID != questionID {
		return SubmitResult{}, domain.ErrInvalidQuestion
	}
	if session.QuestionEndTime != nil && s.now().UnixMilli() > *session.QuestionEndTime {
		return SubmitResult{}, domain.ErrQuestionOver
	}

	question := quiz.Question(questionID)
	if question == nil {
		return SubmitResult{}, domain.ErrInvalidQuestion
	}
	var answer *domain.Answer
	for i := range question.Answers {
		if question.Answers[i].ID == answerID {
			answer = &question.Answers[i]
			break
		}
	}
	if answer == nil {
		return SubmitResult{}, domain.ErrInvalidAnswer
	}

	response := domain.Response{
		ID:            uuid.NewString(),
		ParticipantID: participant.ID,
		QuestionID:    questionID,
		AnswerID:      answerID,
		IsCorrect:     answer.IsCorrect,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateResponse(ctx, response); err != nil {
		return SubmitResult{}, err
	}

	if answer.IsCorrect {
		if err := s.store.SetParticipantPoints(ctx, participant.ID, participant.Points+answer.Points); err != nil {
			return SubmitResult{}, err
		}
	}

	count, err := s.store.CountResponses(ctx, questionID)
	if err != nil {
		return SubmitResult{}, err
	}
	s.publish(session.ID, domain.QuizResponseEvent(count))

	return SubmitResult{ResponseID: response.ID, IsCorrect: answer.IsCorrect, QuestionResponseCount: count}, nil
}

// ResolveRole classifies a websocket connection during its handshake. Any
// verification failure downgrades to participant rather than erroring.
func (s *SessionService) ResolveRole(ctx context.Context, sessionID string, token *string) string {
	if token == nil || *token == "" {
		return domain.ReceiverParticipant
	}
	principal, err := s.verifier.Verify(ctx, *token)
	if err != nil {
		return domain.ReceiverParticipant
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ReceiverParticipant
	}
	if principal.CanActFor(session.HostID) {
		return domain.ReceiverHost
	}
	return domain.ReceiverParticipant
}

// VerifyToken resolves a bearer token for the HTTP surface.
func (s *SessionService) VerifyToken(ctx context.Context, token string) (domain.Principal, error) {
	return s.verifier.Verify(ctx, token)
}

// GetSession returns the stored session; clients use it to resynchronize
// after missed broadcasts.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// GetSessionByCode looks up a session by its join code, case-insensitively.
func (s *SessionService) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	return s.store.GetSessionByCode(ctx, strings.ToLower(code))
}

// Leaders returns the top participants by points.
func (s *SessionService) Leaders(ctx context.Context, sessionID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListLeaders(ctx, sessionID, limit)
}

// ParticipantCount returns the current number of joined participants.
func (s *SessionService) ParticipantCount(ctx context.Context, sessionID string) (int64, error) {
	return s.store.CountParticipants(ctx, sessionID)
}

// publish is best-effort: state was already written, so a lost notification
// only delays clients until their next read.
func (s *SessionService) publish(sessionID string, ev domain.Event) {
	if err := s.hub.Publish(sessionID, ev); err != nil && !errors.Is(err, domain.ErrNoSubscribers) {
		s.log.Warn("broadcast lost", "session", sessionID, "event", ev.Type, "error", err)
	}
}
