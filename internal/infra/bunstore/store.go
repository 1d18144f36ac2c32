package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-admin-service/internal/domain"
)

// Store implements the quiz, submission and admin stores on top of bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAdmin(ctx context.Context, admin domain.Admin) error {
	exists, err := s.db.NewSelect().Model((*adminRow)(nil)).Where("username = ?", admin.Username).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists {
		return domain.ErrUsernameTaken
	}
	row := &adminRow{
		ID:           admin.ID,
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    admin.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (domain.Admin, error) {
	return s.getAdmin(ctx, "username = ?", username)
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (domain.Admin, error) {
	return s.getAdmin(ctx, "id = ?", id)
}

func (s *Store) getAdmin(ctx context.Context, where string, arg interface{}) (domain.Admin, error) {
	row := new(adminRow)
	err := s.db.NewSelect().Model(row).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	if err != nil {
		return domain.Admin{}, fmt.Errorf("load admin: %w", err)
	}
	return domain.Admin{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

// CreateQuiz writes the quiz with its questions and choices in one transaction.
func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	quizRec := &quizRow{
		ID:          quiz.ID,
		OwnerID:     quiz.OwnerID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
	questions := make([]questionRow, 0, len(quiz.Questions))
	choices := make([]choiceRow, 0)
	for _, q := range quiz.Questions {
		questions = append(questions, questionRow{
			ID:                q.ID,
			QuizID:            quiz.ID,
			Text:              q.Text,
			Type:              string(q.Type),
			Position:          q.Order,
			CorrectTextAnswer: q.CorrectTextAnswer,
		})
		for i, c := range q.Choices {
			choices = append(choices, choiceRow{
				ID:         c.ID,
				QuestionID: q.ID,
				Text:       c.Text,
				IsCorrect:  c.IsCorrect,
				Position:   i,
			})
		}
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(quizRec).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}
		if len(choices) > 0 {
			if _, err := tx.NewInsert().Model(&choices).Exec(ctx); err != nil {
				return fmt.Errorf("insert choices: %w", err)
			}
		}
		return nil
	})
}

// ListQuizzes returns the owner's quizzes, newest first, with question counts.
func (s *Store) ListQuizzes(ctx context.Context, ownerID string) ([]domain.QuizSummary, error) {
	var rows []quizRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	var counts []struct {
		QuizID string `bun:"quiz_id"`
		N      int    `bun:"n"`
	}
	err = s.db.NewSelect().
		Model((*questionRow)(nil)).
		Column("quiz_id").
		ColumnExpr("COUNT(*) AS n").
		Where("quiz_id IN (?)", bun.In(ids)).
		Group("quiz_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	byQuiz := make(map[string]int, len(counts))
	for _, c := range counts {
		byQuiz[c.QuizID] = c.N
	}

	for _, r := range rows {
		out = append(out, domain.QuizSummary{
			ID:            r.ID,
			Title:         r.Title,
			Description:   r.Description,
			QuestionCount: byQuiz[r.ID],
			CreatedAt:     r.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// LoadQuiz reads the full question tree. It backs the quiz caches.
func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quizRec := new(quizRow)
	err := s.db.NewSelect().Model(quizRec).Where("id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var questions []questionRow
	if err := s.db.NewSelect().Model(&questions).Where("quiz_id = ?", quizID).Order("position").Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	var choices []choiceRow
	if len(questions) > 0 {
		ids := make([]string, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		err := s.db.NewSelect().
			Model(&choices).
			Where("question_id IN (?)", bun.In(ids)).
			Order("question_id", "position").
			Scan(ctx)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("load choices: %w", err)
		}
	}

	byQuestion := make(map[string][]domain.Choice, len(questions))
	for _, c := range choices {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], domain.Choice{
			ID:        c.ID,
			Text:      c.Text,
			IsCorrect: c.IsCorrect,
		})
	}

	quiz := domain.Quiz{
		ID:          quizRec.ID,
		OwnerID:     quizRec.OwnerID,
		Title:       quizRec.Title,
		Description: quizRec.Description,
		Questions:   make([]domain.Question, 0, len(questions)),
		CreatedAt:   quizRec.CreatedAt.UTC(),
		UpdatedAt:   quizRec.UpdatedAt.UTC(),
	}
	for _, q := range questions {
		qc := byQuestion[q.ID]
		if qc == nil {
			qc = []domain.Choice{}
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:                q.ID,
			Text:              q.Text,
			Type:              domain.QuestionType(q.Type),
			Order:             q.Position,
			Choices:           qc,
			CorrectTextAnswer: q.CorrectTextAnswer,
		})
	}
	return quiz, nil
}

// CreateSubmission writes the submission and its reviewed answers atomically.
func (s *Store) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	subRec := &submissionRow{
		ID:             sub.ID,
		QuizID:         sub.QuizID,
		TakerName:      sub.TakerName,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		Percentage:     sub.Percentage,
		SubmittedAt:    sub.SubmittedAt,
	}
	answers := make([]answerRow, 0, len(sub.Answers))
	for i, a := range sub.Answers {
		answers = append(answers, answerRow{
			SubmissionID:       sub.ID,
			Position:           i,
			QuestionID:         a.QuestionID,
			QuestionText:       a.QuestionText,
			QuestionType:       string(a.QuestionType),
			SelectedChoiceID:   a.SelectedChoiceID,
			SelectedChoiceText: a.SelectedChoiceText,
			TextAnswer:         a.TextAnswer,
			IsCorrect:          a.IsCorrect,
			CorrectChoice:      a.CorrectChoice,
			CorrectText:        a.CorrectText,
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*quizRow)(nil)).Where("id = ?", sub.QuizID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("check quiz: %w", err)
		}
		if !exists {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewInsert().Model(subRec).Exec(ctx); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		if len(answers) > 0 {
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		return nil
	})
}

// ListSubmissions returns every submission for the quiz, oldest first.
func (s *Store) ListSubmissions(ctx context.Context, quizID string) ([]domain.Submission, error) {
	var rows []submissionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		OrderExpr("submitted_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Submission{}, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	answers, err := s.loadAnswers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSubmission(r, answers[r.ID]))
	}
	return out, nil
}

func (s *Store) GetSubmission(ctx context.Context, quizID, submissionID string) (domain.Submission, error) {
	row := new(submissionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", submissionID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("load submission: %w", err)
	}
	answers, err := s.loadAnswers(ctx, []string{row.ID})
	if err != nil {
		return domain.Submission{}, err
	}
	return toSubmission(*row, answers[row.ID]), nil
}

func (s *Store) loadAnswers(ctx context.Context, submissionIDs []string) (map[string][]domain.AnswerResult, error) {
	var rows []answerRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("submission_id IN (?)", bun.In(submissionIDs)).
		Order("submission_id", "position").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	out := make(map[string][]domain.AnswerResult, len(submissionIDs))
	for _, a := range rows {
		out[a.SubmissionID] = append(out[a.SubmissionID], domain.AnswerResult{
			QuestionID:         a.QuestionID,
			QuestionText:       a.QuestionText,
			QuestionType:       domain.QuestionType(a.QuestionType),
			SelectedChoiceID:   a.SelectedChoiceID,
			SelectedChoiceText: a.SelectedChoiceText,
			TextAnswer:         a.TextAnswer,
			IsCorrect:          a.IsCorrect,
			CorrectChoice:      a.CorrectChoice,
			CorrectText:        a.CorrectText,
		})
	}
	return out, nil
}

func toSubmission(r submissionRow, answers []domain.AnswerResult) domain.Submission {
	if answers == nil {
		answers = []domain.AnswerResult{}
	}
	return domain.Submission{
		ID:             r.ID,
		QuizID:         r.QuizID,
		TakerName:      r.TakerName,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		SubmittedAt:    r.SubmittedAt.UTC(),
		Answers:        answers,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
