// Package grading scores quiz submissions and aggregates per-quiz analytics.
// Everything here is a pure function of its inputs.
package grading

import (
	"strings"

	"quiz-admin-service/internal/domain"
)

// Evaluate decides whether answer is correct for question. A nil or empty
// answer is treated as unanswered and is always incorrect.
func Evaluate(question domain.Question, answer *domain.Answer) domain.Evaluation {
	if question.Type == domain.QuestionText {
		eval := domain.Evaluation{CorrectReference: question.CorrectTextAnswer}
		if answer == nil {
			return eval
		}
		eval.IsCorrect = textMatches(answer.TextAnswer, question.CorrectTextAnswer)
		return eval
	}

	correct, ok := question.CorrectChoice()
	eval := domain.Evaluation{CorrectReference: correct.Text}
	if !ok || answer == nil || answer.SelectedChoiceID == "" {
		return eval
	}
	eval.IsCorrect = answer.SelectedChoiceID == correct.ID
	return eval
}

// textMatches compares case-insensitively after trimming surrounding whitespace.
// An empty reference never matches.
func textMatches(given, reference string) bool {
	ref := normalize(reference)
	if ref == "" {
		return false
	}
	return normalize(given) == ref
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
