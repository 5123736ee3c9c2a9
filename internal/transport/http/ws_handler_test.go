package http

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
)

type wsMsg struct {
	Type            string  `json:"type"`
	Value           any     `json:"value"`
	QuestionIndex   *int64  `json:"question_index"`
	QuestionEndTime *int64  `json:"question_end_time"`
}

func newTestService(t *testing.T) (*app.SessionService, string) {
	t.Helper()
	store := memory.NewStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID:             "quiz-1",
			UserID:         "host-1",
			QuestionsOrder: []string{"q1"},
			Questions: []domain.Question{
				{ID: "q1", Answers: []domain.Answer{
					{ID: "a1", IsCorrect: true, Points: 1},
				}},
			},
		},
	}), time.Minute)
	verifier := memory.NewStaticVerifier(map[string]domain.Principal{
		"host-token": {Role: domain.RoleUser, UserID: "host-1"},
	})
	service := app.NewSessionService(store, quizzes, verifier, app.NewHub())

	sessionID, err := service.CreateSession(context.Background(),
		domain.Principal{Role: domain.RoleUser, UserID: "host-1"},
		"quiz-1", "wstest", "Quiz Host", "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return service, sessionID
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) wsMsg {
	t.Helper()
	var msg wsMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func TestWebSocketHandshakeRoles(t *testing.T) {
	service, sessionID := newTestService(t)
	server := httptest.NewServer(NewRouter(service, slog.Default()))
	defer server.Close()

	host := dial(t, server, sessionID)
	defer host.Close()
	token := "host-token"
	if err := host.WriteJSON(map[string]any{"type": "Auth", "value": token}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readNext(t, host); msg.Type != "Ready" || msg.Value != "Host" {
		t.Fatalf("expected Ready/Host, got %s/%v", msg.Type, msg.Value)
	}

	participant := dial(t, server, sessionID)
	defer participant.Close()
	if err := participant.WriteJSON(map[string]any{"type": "Auth", "value": nil}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readNext(t, participant); msg.Type != "Ready" || msg.Value != "Participant" {
		t.Fatalf("expected Ready/Participant, got %s/%v", msg.Type, msg.Value)
	}

	badToken := dial(t, server, sessionID)
	defer badToken.Close()
	if err := badToken.WriteJSON(map[string]any{"type": "Auth", "value": "bogus"}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readNext(t, badToken); msg.Type != "Ready" || msg.Value != "Participant" {
		t.Fatalf("expected bad token to downgrade to Participant, got %s/%v", msg.Type, msg.Value)
	}
}

func TestWebSocketMalformedHandshakeDowngrades(t *testing.T) {
	service, sessionID := newTestService(t)
	server := httptest.NewServer(NewRouter(service, slog.Default()))
	defer server.Close()

	conn := dial(t, server, sessionID)
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readNext(t, conn); msg.Type != "Ready" || msg.Value != "Participant" {
		t.Fatalf("expected Ready/Participant after bad frame, got %s/%v", msg.Type, msg.Value)
	}
}

func TestWebSocketHostOnlyFiltering(t *testing.T) {
	service, sessionID := newTestService(t)
	server := httptest.NewServer(NewRouter(service, slog.Default()))
	defer server.Close()

	host := dial(t, server, sessionID)
	defer host.Close()
	if err := host.WriteJSON(map[string]any{"type": "Auth", "value": "host-token"}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readNext(t, host); msg.Type != "Ready" {
		t.Fatalf("expected Ready, got %s", msg.Type)
	}

	participant := dial(t, server, sessionID)
	defer participant.Close()
	if err := participant.WriteJSON(map[string]any{"type": "Auth", "value": nil}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readNext(t, participant); msg.Type != "Ready" {
		t.Fatalf("expected Ready, got %s", msg.Type)
	}

	// Ready precedes the hub subscription; give both handlers a moment to attach.
	time.Sleep(200 * time.Millisecond)

	if _, err := service.JoinSession(context.Background(), sessionID, "Alice", "", nil); err != nil {
		t.Fatalf("join: %v", err)
	}
	startTime := time.Now().UnixMilli() + 10_000
	if err := service.UpdateSession(context.Background(),
		domain.Principal{Role: domain.RoleUser, UserID: "host-1"},
		sessionID, domain.SessionUpdate{StartTime: &startTime}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// The host sees the join count, then the countdown.
	if msg := readNext(t, host); msg.Type != "Joined" || msg.Value != float64(1) {
		t.Fatalf("expected Joined{1}, got %s/%v", msg.Type, msg.Value)
	}
	if msg := readNext(t, host); msg.Type != "QuizCountdown" {
		t.Fatalf("expected QuizCountdown, got %s", msg.Type)
	}

	// The participant must never see the host-only Joined event.
	if msg := readNext(t, participant); msg.Type != "QuizCountdown" {
		t.Fatalf("participant got %s, want QuizCountdown (Joined must be filtered)", msg.Type)
	}
}

func TestWebSocketQuizStartReachesEveryRole(t *testing.T) {
	service, sessionID := newTestService(t)
	server := httptest.NewServer(NewRouter(service, slog.Default()))
	defer server.Close()

	conns := make([]*websocket.Conn, 0, 2)
	for i := 0; i < 2; i++ {
		conn := dial(t, server, sessionID)
		defer conn.Close()
		if err := conn.WriteJSON(map[string]any{"type": "Auth", "value": nil}); err != nil {
			t.Fatalf("write auth: %v", err)
		}
		if msg := readNext(t, conn); msg.Type != "Ready" {
			t.Fatalf("expected Ready, got %s", msg.Type)
		}
		conns = append(conns, conn)
	}

	time.Sleep(200 * time.Millisecond)

	active := domain.StatusActive
	idx := int64(0)
	endTime := time.Now().UnixMilli() + 30_000
	if err := service.UpdateSession(context.Background(),
		domain.Principal{Role: domain.RoleUser, UserID: "host-1"},
		sessionID, domain.SessionUpdate{
			Status:          &active,
			QuestionIndex:   &idx,
			QuestionEndTime: &endTime,
		}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	for _, conn := range conns {
		msg := readNext(t, conn)
		if msg.Type != "QuizStart" {
			t.Fatalf("expected QuizStart, got %s", msg.Type)
		}
		if msg.QuestionIndex == nil || *msg.QuestionIndex != 0 {
			t.Fatalf("expected question_index 0, got %v", msg.QuestionIndex)
		}
		if msg.QuestionEndTime == nil || *msg.QuestionEndTime != endTime {
			t.Fatalf("expected question_end_time %d, got %v", endTime, msg.QuestionEndTime)
		}
	}
}
