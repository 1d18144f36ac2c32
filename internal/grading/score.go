package grading

import (
	"math"

	"quiz-admin-service/internal/domain"
)

// Result is the outcome of scoring one submission.
type Result struct {
	Score          int
	TotalQuestions int
	Percentage     int
	Answers        []domain.AnswerResult
}

// Score evaluates answers against every question of quiz, in quiz order.
// Questions without an answer count as incorrect; answers for questions that
// are not part of the quiz are ignored. When a question is answered more than
// once the first answer wins.
func Score(quiz domain.Quiz, answers []domain.Answer) Result {
	byQuestion := make(map[string]*domain.Answer, len(answers))
	for i := range answers {
		if _, seen := byQuestion[answers[i].QuestionID]; seen {
			continue
		}
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := Result{
		TotalQuestions: len(quiz.Questions),
		Answers:        make([]domain.AnswerResult, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		answer := byQuestion[question.ID]
		eval := Evaluate(question, answer)
		if eval.IsCorrect {
			result.Score++
		}
		result.Answers = append(result.Answers, review(question, answer, eval))
	}
	result.Percentage = Percent(result.Score, result.TotalQuestions)
	return result
}

// review builds the stored answer snapshot shown to takers and admins.
func review(question domain.Question, answer *domain.Answer, eval domain.Evaluation) domain.AnswerResult {
	out := domain.AnswerResult{
		QuestionID:   question.ID,
		QuestionText: question.Text,
		QuestionType: question.Type,
		IsCorrect:    eval.IsCorrect,
	}

	if question.Type.HasChoices() {
		if eval.CorrectReference != "" {
			out.CorrectChoice = stringPtr(eval.CorrectReference)
		}
		if answer != nil && answer.SelectedChoiceID != "" {
			out.SelectedChoiceID = answer.SelectedChoiceID
			if choice, ok := question.ChoiceByID(answer.SelectedChoiceID); ok {
				out.SelectedChoiceText = stringPtr(choice.Text)
			}
		}
		return out
	}

	out.CorrectText = stringPtr(eval.CorrectReference)
	text := ""
	if answer != nil {
		text = answer.TextAnswer
	}
	out.TextAnswer = stringPtr(text)
	return out
}

// Percent returns round(100*part/total), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func stringPtr(s string) *string {
	return &s
}
