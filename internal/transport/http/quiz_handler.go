package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/domain"
)

// QuizHandler serves quiz authoring, taking and analytics over REST.
type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	quizzes, err := h.service.ListQuizzes(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	var draft domain.QuizDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeServiceError(w, r, err)
		return
	}
	created, err := h.service.CreateQuiz(r.Context(), session, draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	quiz, err := h.service.GetQuiz(r.Context(), session, chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	analytics, err := h.service.Analytics(r.Context(), session, chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (h *QuizHandler) Submission(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	sub, err := h.service.GetSubmission(r.Context(), session, chi.URLParam(r, "quizID"), chi.URLParam(r, "submissionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Public returns the quiz without any correct-answer data.
func (h *QuizHandler) Public(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetPublicQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var draft domain.SubmissionDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeServiceError(w, r, err)
		return
	}
	sub, err := h.service.Submit(r.Context(), chi.URLParam(r, "quizID"), draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
