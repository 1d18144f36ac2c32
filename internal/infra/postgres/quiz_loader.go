package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-admin-service/internal/domain"
)

// QuizLoader reads the question tree straight from Postgres with pgx. It is
// the read path behind the quiz caches when the postgres driver is selected;
// writes go through bunstore.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

const (
	selectQuiz = `SELECT id, owner_id, title, description, created_at, updated_at
FROM quizzes WHERE id = $1`
	selectQuestions = `SELECT id, question_text, question_type, position, correct_text_answer
FROM questions WHERE quiz_id = $1 ORDER BY position`
	selectChoices = `SELECT c.question_id, c.id, c.choice_text, c.is_correct
FROM choices c JOIN questions q ON q.id = c.question_id
WHERE q.quiz_id = $1 ORDER BY c.question_id, c.position`
)

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, selectQuiz, quizID).Scan(
		&quiz.ID, &quiz.OwnerID, &quiz.Title, &quiz.Description, &quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.CreatedAt = quiz.CreatedAt.UTC()
	quiz.UpdatedAt = quiz.UpdatedAt.UTC()

	choices, err := l.loadChoices(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	rows, err := l.pool.Query(ctx, selectQuestions, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q     domain.Question
			qType string
		)
		if err := rows.Scan(&q.ID, &q.Text, &qType, &q.Order, &q.CorrectTextAnswer); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	quiz.Questions = attachChoices(questions, choices)
	return quiz, nil
}

// choiceRow is one row of selectChoices.
type choiceRow struct {
	questionID string
	choice     domain.Choice
}

// groupChoices buckets choice rows by question, keeping row order within a question.
func groupChoices(rows []choiceRow) map[string][]domain.Choice {
	out := make(map[string][]domain.Choice)
	for _, r := range rows {
		out[r.questionID] = append(out[r.questionID], r.choice)
	}
	return out
}

// attachChoices gives every question its choices; text questions get an empty slice.
func attachChoices(questions []domain.Question, choices map[string][]domain.Choice) []domain.Question {
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		q.Choices = choices[q.ID]
		if q.Choices == nil {
			q.Choices = []domain.Choice{}
		}
		out = append(out, q)
	}
	return out
}

func (l *QuizLoader) loadChoices(ctx context.Context, quizID string) (map[string][]domain.Choice, error) {
	rows, err := l.pool.Query(ctx, selectChoices, quizID)
	if err != nil {
		return nil, fmt.Errorf("load choices: %w", err)
	}
	defer rows.Close()

	var scanned []choiceRow
	for rows.Next() {
		var r choiceRow
		if err := rows.Scan(&r.questionID, &r.choice.ID, &r.choice.Text, &r.choice.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load choices: %w", err)
	}
	return groupChoices(scanned), nil
}
