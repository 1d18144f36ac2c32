package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/logging"
)

// NewRouter mounts the REST API and the live analytics socket.
func NewRouter(logger *logrus.Logger, quizzes *app.QuizService, accounts *app.AuthService, corsOrigins []string) http.Handler {
	quizHandler := NewQuizHandler(quizzes)
	authHandler := NewAuthHandler(accounts)
	liveHandler := NewLiveHandler(quizzes)
	requireAuth := auth.Middleware(accounts, writeUnauthorized, writeServiceError)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", authHandler.Logout)
			r.Get("/profile", authHandler.Profile)
		})
	})

	r.Route("/api/quizzes", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", quizHandler.List)
		r.Post("/", quizHandler.Create)
		r.Get("/{quizID}", quizHandler.Get)
		r.Get("/{quizID}/analytics", quizHandler.Analytics)
		r.Get("/{quizID}/submissions/{submissionID}", quizHandler.Submission)
		r.Get("/{quizID}/live", liveHandler.ServeWS)
	})

	r.Route("/api/public/quizzes/{quizID}", func(r chi.Router) {
		r.Get("/", quizHandler.Public)
		r.Post("/submit", quizHandler.Submit)
	})
	return r
}
