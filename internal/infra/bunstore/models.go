package bunstore

import (
	"time"

	"github.com/uptrace/bun"
)

type adminRow struct {
	bun.BaseModel `bun:"table:admins"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull,unique"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          string    `bun:"id,pk"`
	OwnerID     string    `bun:"owner_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID                string `bun:"id,pk"`
	QuizID            string `bun:"quiz_id,notnull"`
	Text              string `bun:"question_text,notnull"`
	Type              string `bun:"question_type,notnull"`
	Position          int    `bun:"position,notnull"`
	CorrectTextAnswer string `bun:"correct_text_answer,notnull"`
}

type choiceRow struct {
	bun.BaseModel `bun:"table:choices"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id,notnull"`
	Text       string `bun:"choice_text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
	Position   int    `bun:"position,notnull"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions"`

	ID             string    `bun:"id,pk"`
	QuizID         string    `bun:"quiz_id,notnull"`
	TakerName      string    `bun:"taker_name,notnull"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     int       `bun:"percentage,notnull"`
	SubmittedAt    time.Time `bun:"submitted_at,notnull"`
}

// answerRow snapshots the question so reviews survive later edits to the tree.
type answerRow struct {
	bun.BaseModel `bun:"table:answers"`

	SubmissionID       string  `bun:"submission_id,pk"`
	Position           int     `bun:"position,pk"`
	QuestionID         string  `bun:"question_id,notnull"`
	QuestionText       string  `bun:"question_text,notnull"`
	QuestionType       string  `bun:"question_type,notnull"`
	SelectedChoiceID   string  `bun:"selected_choice_id,notnull"`
	SelectedChoiceText *string `bun:"selected_choice_text"`
	TextAnswer         *string `bun:"text_answer"`
	IsCorrect          bool    `bun:"is_correct,notnull"`
	CorrectChoice      *string `bun:"correct_choice"`
	CorrectText        *string `bun:"correct_text"`
}
