package domain

import "time"

// QuestionType enumerates the supported question kinds using their wire names.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "mcq"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionText           QuestionType = "text"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionText:
		return true
	}
	return false
}

// HasChoices reports whether questions of this type are answered by picking a choice.
func (t QuestionType) HasChoices() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// Choice represents a possible answer for a choice-based question.
type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"choice_text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a validated quiz question. Build it with NewQuestion.
type Question struct {
	ID                string       `json:"id"`
	Text              string       `json:"question_text"`
	Type              QuestionType `json:"question_type"`
	Order             int          `json:"order"`
	Choices           []Choice     `json:"choices"`
	CorrectTextAnswer string       `json:"correct_text_answer,omitempty"`
}

// CorrectChoice returns the choice flagged correct, if any.
func (q Question) CorrectChoice() (Choice, bool) {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c, true
		}
	}
	return Choice{}, false
}

// ChoiceByID looks up one of the question's choices.
func (q Question) ChoiceByID(id string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Quiz is an ordered collection of questions owned by one admin.
// Quizzes are immutable once created.
type Quiz struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// QuizSummary is the dashboard listing row.
type QuizSummary struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	CreatedByUsername string    `json:"created_by_username"`
	QuestionCount     int       `json:"question_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// PublicChoice hides the correctness flag from takers.
type PublicChoice struct {
	ID   string `json:"id"`
	Text string `json:"choice_text"`
}

// PublicQuestion is the taker view of a question.
type PublicQuestion struct {
	ID      string         `json:"id"`
	Text    string         `json:"question_text"`
	Type    QuestionType   `json:"question_type"`
	Order   int            `json:"order"`
	Choices []PublicChoice `json:"choices"`
}

// PublicQuiz is what anonymous takers receive through the shared link.
type PublicQuiz struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []PublicQuestion `json:"questions"`
}

// Public strips every correct-answer hint from the quiz.
func (q Quiz) Public() PublicQuiz {
	out := PublicQuiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		pq := PublicQuestion{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Order:   question.Order,
			Choices: make([]PublicChoice, 0, len(question.Choices)),
		}
		for _, c := range question.Choices {
			pq.Choices = append(pq.Choices, PublicChoice{ID: c.ID, Text: c.Text})
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

// Answer is what a taker submits for one question. At most one of
// SelectedChoiceID and TextAnswer is meaningful for a given question type;
// an empty value means the question was left unanswered.
type Answer struct {
	QuestionID       string `json:"question_id"`
	SelectedChoiceID string `json:"selected_choice_id,omitempty"`
	TextAnswer       string `json:"text_answer,omitempty"`
}

// SubmissionDraft is a taker's raw submission.
type SubmissionDraft struct {
	TakerName string   `json:"taker_name"`
	Answers   []Answer `json:"answers"`
}

// Evaluation is the verdict for a single answer.
type Evaluation struct {
	IsCorrect        bool
	CorrectReference string
}

// AnswerResult is the reviewed answer stored with a submission. It snapshots
// the question so the review stays stable.
type AnswerResult struct {
	QuestionID         string       `json:"question_id"`
	QuestionText       string       `json:"question_text"`
	QuestionType       QuestionType `json:"question_type"`
	SelectedChoiceID   string       `json:"selected_choice_id,omitempty"`
	SelectedChoiceText *string      `json:"selected_choice_text"`
	TextAnswer         *string      `json:"text_answer"`
	IsCorrect          bool         `json:"is_correct"`
	CorrectChoice      *string      `json:"correct_choice"`
	CorrectText        *string      `json:"correct_text"`
}

// Submission is one completed quiz attempt. Immutable once stored.
type Submission struct {
	ID             string         `json:"id"`
	QuizID         string         `json:"quiz_id"`
	QuizTitle      string         `json:"quiz_title"`
	TakerName      string         `json:"taker_name"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     int            `json:"percentage"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Answers        []AnswerResult `json:"answers"`
}

// SubmissionEvent is published to live analytics watchers after a submission is stored.
type SubmissionEvent struct {
	QuizID     string            `json:"quiz_id"`
	Submission SubmissionSummary `json:"submission"`
}

// Admin is a quiz author.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
