package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-admin-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	store := NewStore()
	quiz := sampleQuiz(t, "owner-1", time.Now())
	if err := store.CreateQuiz(context.Background(), quiz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	loader := &countingLoader{QuizLoader: store}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuiz(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryReloadsAfterExpiry(t *testing.T) {
	store := NewStore()
	quiz := sampleQuiz(t, "owner-1", time.Now())
	_ = store.CreateQuiz(context.Background(), quiz)
	loader := &countingLoader{QuizLoader: store}
	repo := NewQuizRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }
	if _, err := repo.GetQuiz(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStore()}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected ErrQuizNotFound, got %v", err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected misses to reach the loader, got %d", loader.count())
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz(t *testing.T, ownerID string, now time.Time) domain.Quiz {
	t.Helper()
	quiz, err := domain.NewQuiz(ownerID, domain.QuizDraft{
		Title: "Arithmetic",
		Questions: []domain.QuestionDraft{
			{
				Text: "What is 2 + 2?",
				Type: domain.QuestionMultipleChoice,
				Choices: []domain.ChoiceDraft{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
			},
			{Text: "Name the operation in 2 + 2", Type: domain.QuestionText, CorrectTextAnswer: "addition"},
		},
	}, now)
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}
	return quiz
}
