package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/memory"
)

type fixture struct {
	svc   *app.QuizService
	store *memory.Store
	hub   *memory.FeedHub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	hub := memory.NewFeedHub()
	svc := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute), store, hub)
	return fixture{svc: svc, store: store, hub: hub}
}

var (
	owner    = auth.Session{ID: "sess-1", AdminID: "admin-1", Username: "alice"}
	stranger = auth.Session{ID: "sess-2", AdminID: "admin-2", Username: "bob"}
)

func draft() domain.QuizDraft {
	return domain.QuizDraft{
		Title:       "Capitals",
		Description: "European capitals",
		Questions: []domain.QuestionDraft{
			{
				Text: "Capital of France?",
				Type: domain.QuestionMultipleChoice,
				Choices: []domain.ChoiceDraft{
					{Text: "Paris", IsCorrect: true},
					{Text: "Lyon"},
				},
			},
			{Text: "Berlin is in Germany", Type: domain.QuestionTrueFalse},
			{Text: "Capital of Italy?", Type: domain.QuestionText, CorrectTextAnswer: "Rome"},
		},
	}
}

func createQuiz(t *testing.T, f fixture) domain.Quiz {
	t.Helper()
	created, err := f.svc.CreateQuiz(context.Background(), owner, draft())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if created.ShareLink != "/quiz/"+created.ID {
		t.Fatalf("unexpected share link %q", created.ShareLink)
	}
	quiz, err := f.store.LoadQuiz(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	return quiz
}

func correctAnswers(quiz domain.Quiz) []domain.Answer {
	answers := make([]domain.Answer, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if c, ok := q.CorrectChoice(); ok {
			answers = append(answers, domain.Answer{QuestionID: q.ID, SelectedChoiceID: c.ID})
			continue
		}
		answers = append(answers, domain.Answer{QuestionID: q.ID, TextAnswer: "  " + q.CorrectTextAnswer + " "})
	}
	return answers
}

func TestCreateQuizRejectsInvalidDraft(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateQuiz(context.Background(), owner, domain.QuizDraft{Title: "  "})
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
	list, _ := f.svc.ListQuizzes(context.Background(), owner)
	if len(list) != 0 {
		t.Fatalf("invalid quiz must not be stored")
	}
}

func TestListQuizzesIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	createQuiz(t, f)

	mine, err := f.svc.ListQuizzes(context.Background(), owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].CreatedByUsername != "alice" || mine[0].QuestionCount != 3 {
		t.Fatalf("unexpected listing %+v", mine)
	}
	theirs, _ := f.svc.ListQuizzes(context.Background(), stranger)
	if len(theirs) != 0 {
		t.Fatalf("expected no quizzes for another admin, got %d", len(theirs))
	}
}

func TestAdminReadsHideForeignQuizzes(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)
	ctx := context.Background()

	if _, err := f.svc.GetQuiz(ctx, stranger, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("GetQuiz: expected ErrQuizNotFound, got %v", err)
	}
	if _, err := f.svc.Analytics(ctx, stranger, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("Analytics: expected ErrQuizNotFound, got %v", err)
	}
	if _, _, err := f.svc.Watch(ctx, stranger, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("Watch: expected ErrQuizNotFound, got %v", err)
	}
	detail, err := f.svc.GetQuiz(ctx, owner, quiz.ID)
	if err != nil || detail.CreatedByUsername != "alice" {
		t.Fatalf("owner GetQuiz: %+v %v", detail, err)
	}
}

func TestPublicQuizHidesAnswers(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)

	public, err := f.svc.GetPublicQuiz(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("public quiz: %v", err)
	}
	if len(public.Questions) != 3 || len(public.Questions[1].Choices) != 2 {
		t.Fatalf("unexpected public quiz %+v", public)
	}
	if _, err := f.svc.GetPublicQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitScoresAndStores(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f.svc.WithClock(func() time.Time { return fixed })

	answers := correctAnswers(quiz)[:2]
	sub, err := f.svc.Submit(context.Background(), quiz.ID, domain.SubmissionDraft{TakerName: "  Dana ", Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Score != 2 || sub.TotalQuestions != 3 || sub.Percentage != 67 {
		t.Fatalf("unexpected score %d/%d (%d%%)", sub.Score, sub.TotalQuestions, sub.Percentage)
	}
	if sub.TakerName != "Dana" || !sub.SubmittedAt.Equal(fixed) || sub.QuizTitle != "Capitals" {
		t.Fatalf("unexpected submission metadata %+v", sub)
	}
	if len(sub.Answers) != 3 || sub.Answers[2].IsCorrect {
		t.Fatalf("expected the unanswered question reviewed as incorrect: %+v", sub.Answers)
	}

	stored, err := f.svc.GetSubmission(context.Background(), owner, quiz.ID, sub.ID)
	if err != nil || stored.Score != 2 {
		t.Fatalf("get submission: %+v %v", stored, err)
	}
	if _, err := f.svc.GetSubmission(context.Background(), stranger, quiz.ID, sub.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound for another admin, got %v", err)
	}
}

func TestSubmitTakerName(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)

	sub, err := f.svc.Submit(context.Background(), quiz.ID, domain.SubmissionDraft{TakerName: "   "})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.TakerName != "Anonymous" || sub.Score != 0 || sub.Percentage != 0 {
		t.Fatalf("unexpected anonymous submission %+v", sub)
	}

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := f.svc.Submit(context.Background(), quiz.ID, domain.SubmissionDraft{TakerName: string(long)}); !errors.Is(err, domain.ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), "missing", domain.SubmissionDraft{}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestAnalyticsReflectsEverySubmission(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)
	ctx := context.Background()

	empty, err := f.svc.Analytics(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if empty.TotalSubmissions != 0 || empty.AveragePercentage != 0 || empty.PassRate != 0 {
		t.Fatalf("unexpected empty analytics %+v", empty)
	}

	all := correctAnswers(quiz)
	drafts := []domain.SubmissionDraft{
		{TakerName: "full", Answers: all},
		{TakerName: "two", Answers: all[:2]},
		{TakerName: "none"},
	}
	for _, d := range drafts {
		if _, err := f.svc.Submit(ctx, quiz.ID, d); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	got, err := f.svc.Analytics(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if got.TotalSubmissions != 3 || got.HighestScore != 3 || got.LowestScore != 0 {
		t.Fatalf("unexpected totals %+v", got)
	}
	// percentages 100, 67, 0
	if got.AveragePercentage != 56 || got.PassRate != 33 {
		t.Fatalf("unexpected rates avg=%d pass=%d", got.AveragePercentage, got.PassRate)
	}
	if len(got.QuestionAnalytics) != 3 || got.QuestionAnalytics[0].CorrectAnswers != 2 || got.QuestionAnalytics[2].CorrectAnswers != 1 {
		t.Fatalf("unexpected question analytics %+v", got.QuestionAnalytics)
	}
	if len(got.Submissions) != 3 {
		t.Fatalf("expected 3 submission summaries, got %d", len(got.Submissions))
	}
}

func TestWatchReceivesSubmissions(t *testing.T) {
	f := newFixture(t)
	quiz := createQuiz(t, f)
	ctx := context.Background()

	events, cancel, err := f.svc.Watch(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	sub, err := f.svc.Submit(ctx, quiz.ID, domain.SubmissionDraft{TakerName: "Eve", Answers: correctAnswers(quiz)})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case ev := <-events:
		if ev.QuizID != quiz.ID || ev.Submission.ID != sub.ID || ev.Submission.Percentage != 100 {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for submission event")
	}
}
