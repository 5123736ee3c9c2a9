package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quiz-session-service/internal/app"
)

// NewRouter wires the REST and websocket surfaces onto one chi mux.
func NewRouter(service *app.SessionService, log *slog.Logger) *chi.Mux {
	sessions := NewSessionHandler(service, log)
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/quizzes/{quizID}/sessions", sessions.CreateSession)
		r.Get("/sessions/code/{code}", sessions.GetSessionByCode)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", sessions.GetSession)
			r.Patch("/", sessions.UpdateSession)
			r.Post("/participants", sessions.JoinSession)
			r.Get("/leaders", sessions.GetLeaders)
			r.Get("/participant_count", sessions.GetParticipantCount)
		})
		r.Post("/responses", sessions.SubmitResponse)
	})

	r.Get("/ws/{sessionID}", ws.ServeWS)

	return r
}
