package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-admin-service/internal/domain"
)

// Store keeps admins, quizzes and submissions in process memory. It backs the
// "memory" storage driver and the service tests.
type Store struct {
	mu          sync.RWMutex
	admins      map[string]domain.Admin
	usernames   map[string]string
	quizzes     map[string]domain.Quiz
	submissions map[string][]domain.Submission
}

func NewStore() *Store {
	return &Store{
		admins:      make(map[string]domain.Admin),
		usernames:   make(map[string]string),
		quizzes:     make(map[string]domain.Quiz),
		submissions: make(map[string][]domain.Submission),
	}
}

func (s *Store) CreateAdmin(_ context.Context, admin domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernames[admin.Username]; taken {
		return domain.ErrUsernameTaken
	}
	s.admins[admin.ID] = admin
	s.usernames[admin.Username] = admin.ID
	return nil
}

func (s *Store) GetAdminByUsername(_ context.Context, username string) (domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	return s.admins[id], nil
}

func (s *Store) GetAdminByID(_ context.Context, id string) (domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	return admin, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

// ListQuizzes returns the owner's quizzes, newest first.
func (s *Store) ListQuizzes(_ context.Context, ownerID string) ([]domain.QuizSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizSummary, 0)
	for _, q := range s.quizzes {
		if q.OwnerID != ownerID {
			continue
		}
		out = append(out, domain.QuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			Description:   q.Description,
			QuestionCount: len(q.Questions),
			CreatedAt:     q.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// LoadQuiz lets the store back a QuizRepository cache.
func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(q), nil
}

func (s *Store) CreateSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[sub.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	sub.Answers = append([]domain.AnswerResult(nil), sub.Answers...)
	s.submissions[sub.QuizID] = append(s.submissions[sub.QuizID], sub)
	return nil
}

// ListSubmissions returns submissions in insertion order.
func (s *Store) ListSubmissions(_ context.Context, quizID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := s.submissions[quizID]
	out := make([]domain.Submission, len(subs))
	copy(out, subs)
	return out, nil
}

func (s *Store) GetSubmission(_ context.Context, quizID, submissionID string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions[quizID] {
		if sub.ID == submissionID {
			sub.Answers = append([]domain.AnswerResult(nil), sub.Answers...)
			return sub, nil
		}
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Choices = append([]domain.Choice{}, question.Choices...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
