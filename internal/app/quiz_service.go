package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/grading"
	"quiz-admin-service/internal/logging"
)

const (
	anonymousTaker     = "Anonymous"
	maxTakerNameLength = 100
)

// QuizStore persists quizzes. Quizzes are written once and never updated.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context, ownerID string) ([]domain.QuizSummary, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SubmissionStore persists scored submissions.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission domain.Submission) error
	ListSubmissions(ctx context.Context, quizID string) ([]domain.Submission, error)
	GetSubmission(ctx context.Context, quizID, submissionID string) (domain.Submission, error)
}

// FeedHub abstracts how submission events reach live watchers (in-process, Redis, etc).
type FeedHub interface {
	Publish(ctx context.Context, event domain.SubmissionEvent) error
	Subscribe(ctx context.Context, quizID string) (<-chan domain.SubmissionEvent, func(), error)
}

// CreatedQuiz is returned after a quiz is stored.
type CreatedQuiz struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ShareLink string `json:"share_link"`
}

// QuizDetail is the admin view of a quiz.
type QuizDetail struct {
	domain.Quiz
	CreatedByUsername string `json:"created_by_username"`
}

// QuizService contains the quiz authoring, taking and analytics use cases.
type QuizService struct {
	store       QuizStore
	quizzes     QuizRepository
	submissions SubmissionStore
	feed        FeedHub
	now         func() time.Time
}

func NewQuizService(store QuizStore, quizzes QuizRepository, submissions SubmissionStore, feed FeedHub) *QuizService {
	return &QuizService{
		store:       store,
		quizzes:     quizzes,
		submissions: submissions,
		feed:        feed,
		now:         time.Now,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// CreateQuiz validates and stores a quiz owned by the session's admin.
func (s *QuizService) CreateQuiz(ctx context.Context, session auth.Session, draft domain.QuizDraft) (CreatedQuiz, error) {
	quiz, err := domain.NewQuiz(session.AdminID, draft, s.now().UTC())
	if err != nil {
		return CreatedQuiz{}, err
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return CreatedQuiz{}, fmt.Errorf("create quiz: %w", err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"quiz_id":   quiz.ID,
		"admin_id":  session.AdminID,
		"questions": len(quiz.Questions),
	}).Info("quiz created")

	return CreatedQuiz{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Message:   "Quiz created successfully",
		ShareLink: "/quiz/" + quiz.ID,
	}, nil
}

// ListQuizzes returns the session admin's quizzes, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context, session auth.Session) ([]domain.QuizSummary, error) {
	summaries, err := s.store.ListQuizzes(ctx, session.AdminID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].CreatedByUsername = session.Username
	}
	return summaries, nil
}

// GetQuiz returns the full quiz, correct answers included, to its owner.
func (s *QuizService) GetQuiz(ctx context.Context, session auth.Session, quizID string) (QuizDetail, error) {
	quiz, err := s.ownedQuiz(ctx, session, quizID)
	if err != nil {
		return QuizDetail{}, err
	}
	return QuizDetail{Quiz: quiz, CreatedByUsername: session.Username}, nil
}

// GetPublicQuiz returns the taker view of a quiz.
func (s *QuizService) GetPublicQuiz(ctx context.Context, quizID string) (domain.PublicQuiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PublicQuiz{}, err
	}
	return quiz.Public(), nil
}

// Submit scores a taker's answers, stores the submission and notifies live watchers.
func (s *QuizService) Submit(ctx context.Context, quizID string, draft domain.SubmissionDraft) (domain.Submission, error) {
	takerName := strings.TrimSpace(draft.TakerName)
	if takerName == "" {
		takerName = anonymousTaker
	}
	if utf8.RuneCountInString(takerName) > maxTakerNameLength {
		return domain.Submission{}, fmt.Errorf("%w: taker name exceeds %d characters", domain.ErrInvalidSubmission, maxTakerNameLength)
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Submission{}, err
	}

	result := grading.Score(quiz, draft.Answers)
	submission := domain.Submission{
		ID:             uuid.NewString(),
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		TakerName:      takerName,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		SubmittedAt:    s.now().UTC(),
		Answers:        result.Answers,
	}
	if err := s.submissions.CreateSubmission(ctx, submission); err != nil {
		return domain.Submission{}, fmt.Errorf("store submission: %w", err)
	}

	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"quiz_id":       quiz.ID,
		"submission_id": submission.ID,
		"score":         submission.Score,
		"total":         submission.TotalQuestions,
	})
	log.Info("submission scored")

	// The submission is already stored; a failed notification only delays live views.
	event := domain.SubmissionEvent{QuizID: quiz.ID, Submission: grading.Summarize(submission)}
	if err := s.feed.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("publish submission event")
	}
	return submission, nil
}

// Analytics aggregates every submission of an owned quiz.
func (s *QuizService) Analytics(ctx context.Context, session auth.Session, quizID string) (domain.QuizAnalytics, error) {
	var (
		quiz        domain.Quiz
		submissions []domain.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = s.ownedQuiz(gctx, session, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		submissions, err = s.submissions.ListSubmissions(gctx, quizID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.QuizAnalytics{}, err
	}
	return grading.Aggregate(quiz, submissions), nil
}

// GetSubmission returns one submission's review to the quiz owner.
func (s *QuizService) GetSubmission(ctx context.Context, session auth.Session, quizID, submissionID string) (domain.Submission, error) {
	quiz, err := s.ownedQuiz(ctx, session, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	submission, err := s.submissions.GetSubmission(ctx, quizID, submissionID)
	if err != nil {
		return domain.Submission{}, err
	}
	submission.QuizTitle = quiz.Title
	return submission, nil
}

// Watch subscribes the quiz owner to new submissions.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Watch(ctx context.Context, session auth.Session, quizID string) (<-chan domain.SubmissionEvent, func(), error) {
	if _, err := s.ownedQuiz(ctx, session, quizID); err != nil {
		return nil, nil, err
	}
	return s.feed.Subscribe(ctx, quizID)
}

// ownedQuiz hides quizzes of other admins behind ErrQuizNotFound.
func (s *QuizService) ownedQuiz(ctx context.Context, session auth.Session, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.OwnerID != session.AdminID {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}
