package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxTitleLength      = 200
	maxChoiceTextLength = 200
)

// ChoiceDraft is the unvalidated input for a choice.
type ChoiceDraft struct {
	Text      string `json:"choice_text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionDraft is the unvalidated input for a question. A nil Order means
// "use the position in the request".
type QuestionDraft struct {
	Text              string        `json:"question_text"`
	Type              QuestionType  `json:"question_type"`
	Order             *int          `json:"order,omitempty"`
	CorrectTextAnswer string        `json:"correct_text_answer,omitempty"`
	Choices           []ChoiceDraft `json:"choices,omitempty"`
}

// QuizDraft is the unvalidated input for a whole quiz.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuiz, fmt.Sprintf(format, args...))
}

// NewQuestion validates and normalizes a draft into a Question with fresh IDs.
// Choice-based questions always end up with exactly one correct choice.
func NewQuestion(draft QuestionDraft, order int) (Question, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return Question{}, invalid("question text is required")
	}
	if !draft.Type.Valid() {
		return Question{}, invalid("unsupported question type %q", draft.Type)
	}

	q := Question{
		ID:    uuid.NewString(),
		Text:  text,
		Type:  draft.Type,
		Order: order,
	}

	switch draft.Type {
	case QuestionMultipleChoice:
		if len(draft.Choices) < 2 {
			return Question{}, invalid("multiple-choice question %q needs at least 2 choices", text)
		}
		choices, err := buildChoices(text, draft.Choices)
		if err != nil {
			return Question{}, err
		}
		q.Choices = choices
	case QuestionTrueFalse:
		choices, err := trueFalseChoices(text, draft)
		if err != nil {
			return Question{}, err
		}
		q.Choices = choices
	case QuestionText:
		if len(draft.Choices) > 0 {
			return Question{}, invalid("text question %q must not have choices", text)
		}
		answer := strings.TrimSpace(draft.CorrectTextAnswer)
		if answer == "" {
			return Question{}, invalid("text question %q needs a reference answer", text)
		}
		q.CorrectTextAnswer = answer
		q.Choices = []Choice{}
	}
	return q, nil
}

func buildChoices(questionText string, drafts []ChoiceDraft) ([]Choice, error) {
	choices := make([]Choice, 0, len(drafts))
	correct := 0
	for _, d := range drafts {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			return nil, invalid("question %q has an empty choice", questionText)
		}
		if utf8.RuneCountInString(text) > maxChoiceTextLength {
			return nil, invalid("choice text exceeds %d characters", maxChoiceTextLength)
		}
		if d.IsCorrect {
			correct++
		}
		choices = append(choices, Choice{ID: uuid.NewString(), Text: text, IsCorrect: d.IsCorrect})
	}
	if correct != 1 {
		return nil, invalid("question %q must have exactly one correct choice, got %d", questionText, correct)
	}
	return choices, nil
}

func trueFalseChoices(questionText string, draft QuestionDraft) ([]Choice, error) {
	if len(draft.Choices) == 0 {
		trueCorrect := !strings.EqualFold(strings.TrimSpace(draft.CorrectTextAnswer), "false")
		return []Choice{
			{ID: uuid.NewString(), Text: "True", IsCorrect: trueCorrect},
			{ID: uuid.NewString(), Text: "False", IsCorrect: !trueCorrect},
		}, nil
	}
	if len(draft.Choices) != 2 {
		return nil, invalid("true/false question %q needs exactly 2 choices", questionText)
	}
	choices, err := buildChoices(questionText, draft.Choices)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for i := range choices {
		switch strings.ToLower(choices[i].Text) {
		case "true":
			choices[i].Text = "True"
		case "false":
			choices[i].Text = "False"
		default:
			return nil, invalid("true/false question %q has choice %q", questionText, choices[i].Text)
		}
		seen[choices[i].Text] = true
	}
	if len(seen) != 2 {
		return nil, invalid("true/false question %q needs one True and one False choice", questionText)
	}
	return choices, nil
}

// NewQuiz validates a draft and builds a quiz owned by ownerID. Questions are
// ordered by their explicit order, falling back to request position.
func NewQuiz(ownerID string, draft QuizDraft, now time.Time) (Quiz, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return Quiz{}, invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Quiz{}, invalid("title exceeds %d characters", maxTitleLength)
	}

	questions := make([]Question, 0, len(draft.Questions))
	orders := make(map[int]bool, len(draft.Questions))
	for idx, qd := range draft.Questions {
		order := idx
		if qd.Order != nil {
			order = *qd.Order
		}
		if orders[order] {
			return Quiz{}, invalid("duplicate question order %d", order)
		}
		orders[order] = true

		q, err := NewQuestion(qd, order)
		if err != nil {
			return Quiz{}, err
		}
		questions = append(questions, q)
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})

	return Quiz{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Questions:   questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
