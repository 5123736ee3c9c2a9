package memory

import (
	"context"
	"testing"
	"time"

	"quiz-session-service/internal/domain"
)

func TestStoreSessionLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := domain.Session{
		ID:               "s1",
		QuizID:           "quiz-1",
		HostID:           "host-1",
		Code:             "abc",
		Status:           domain.StatusReady,
		QuestionDuration: domain.DefaultQuestionDuration,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Code != "abc" {
		t.Fatalf("expected code abc, got %s", got.Code)
	}

	if _, err := store.GetSessionByCode(ctx, "ABC"); err != nil {
		t.Fatalf("expected case-insensitive code lookup, got %v", err)
	}

	active := domain.StatusActive
	idx := int64(0)
	if err := store.UpdateSession(ctx, "s1", domain.SessionUpdate{Status: &active, QuestionIndex: &idx}); err != nil {
		t.Fatalf("update session: %v", err)
	}
	got, _ = store.GetSession(ctx, "s1")
	if got.Status != domain.StatusActive {
		t.Fatalf("expected Active, got %s", got.Status)
	}
	if got.QuestionIndex == nil || *got.QuestionIndex != 0 {
		t.Fatalf("expected question index 0, got %v", got.QuestionIndex)
	}
	// Untouched fields survive a partial update.
	if got.Code != "abc" {
		t.Fatalf("expected code preserved, got %s", got.Code)
	}

	if err := store.UpdateSession(ctx, "missing", domain.SessionUpdate{}); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreParticipantsAndResponses(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, p := range []domain.Participant{
		{ID: "p1", SessionID: "s1", Name: "Alice"},
		{ID: "p2", SessionID: "s1", Name: "Bob"},
		{ID: "p3", SessionID: "other", Name: "Carol"},
	} {
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("create participant: %v", err)
		}
	}

	count, err := store.CountParticipants(ctx, "s1")
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 participants, got %d", count)
	}

	if err := store.SetParticipantPoints(ctx, "p2", 5); err != nil {
		t.Fatalf("set points: %v", err)
	}
	leaders, err := store.ListLeaders(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("list leaders: %v", err)
	}
	if len(leaders) != 2 || leaders[0].ParticipantID != "p2" || leaders[0].Points != 5 {
		t.Fatalf("expected bob leading with 5, got %+v", leaders)
	}

	for i, r := range []domain.Response{
		{ID: "r1", ParticipantID: "p1", QuestionID: "q1", AnswerID: "a1"},
		{ID: "r2", ParticipantID: "p2", QuestionID: "q1", AnswerID: "a2", IsCorrect: true},
		{ID: "r3", ParticipantID: "p1", QuestionID: "q2", AnswerID: "a3"},
	} {
		if err := store.CreateResponse(ctx, r); err != nil {
			t.Fatalf("create response %d: %v", i, err)
		}
	}
	responses, err := store.CountResponses(ctx, "q1")
	if err != nil {
		t.Fatalf("count responses: %v", err)
	}
	if responses != 2 {
		t.Fatalf("expected 2 responses for q1, got %d", responses)
	}
}
