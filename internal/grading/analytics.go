package grading

import (
	"math"
	"sort"

	"quiz-admin-service/internal/domain"
)

const (
	// PassThreshold is the minimum percentage that counts as a pass.
	PassThreshold = 70
	// HighBandFloor and MediumBandFloor split percentages into display bands.
	HighBandFloor   = 80
	MediumBandFloor = 60
)

// BandFor maps a percentage or accuracy to its display band.
func BandFor(value int) domain.Band {
	switch {
	case value >= HighBandFloor:
		return domain.BandHigh
	case value >= MediumBandFloor:
		return domain.BandMedium
	default:
		return domain.BandLow
	}
}

// Aggregate computes quiz-level analytics from the full submission set.
// With no submissions every average, rate and extreme is 0.
func Aggregate(quiz domain.Quiz, submissions []domain.Submission) domain.QuizAnalytics {
	out := domain.QuizAnalytics{
		QuizID:            quiz.ID,
		QuizTitle:         quiz.Title,
		TotalSubmissions:  len(submissions),
		QuestionAnalytics: questionAnalytics(quiz, submissions),
		Submissions:       summaries(submissions),
	}
	if len(submissions) == 0 {
		return out
	}

	var (
		percentSum int
		scoreSum   int
		passed     int
	)
	highest, lowest := submissions[0], submissions[0]
	for _, s := range submissions {
		percentSum += s.Percentage
		scoreSum += s.Score
		if s.Percentage >= PassThreshold {
			passed++
		}
		if s.Score > highest.Score {
			highest = s
		}
		if s.Score < lowest.Score {
			lowest = s
		}
	}

	n := float64(len(submissions))
	out.AveragePercentage = int(math.Round(float64(percentSum) / n))
	out.AverageScore = math.Round(float64(scoreSum)/n*10) / 10
	out.PassRate = Percent(passed, len(submissions))
	out.HighestScore = highest.Score
	out.HighestScoreTotal = highest.TotalQuestions
	out.LowestScore = lowest.Score
	out.LowestScoreTotal = lowest.TotalQuestions
	return out
}

func questionAnalytics(quiz domain.Quiz, submissions []domain.Submission) []domain.QuestionAnalytics {
	type tally struct{ total, correct int }
	counts := make(map[string]*tally, len(quiz.Questions))
	for _, q := range quiz.Questions {
		counts[q.ID] = &tally{}
	}
	for _, s := range submissions {
		for _, a := range s.Answers {
			t, ok := counts[a.QuestionID]
			if !ok {
				continue
			}
			t.total++
			if a.IsCorrect {
				t.correct++
			}
		}
	}

	out := make([]domain.QuestionAnalytics, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		t := counts[q.ID]
		accuracy := Percent(t.correct, t.total)
		out = append(out, domain.QuestionAnalytics{
			QuestionID:     q.ID,
			QuestionText:   q.Text,
			QuestionType:   q.Type,
			TotalAnswers:   t.total,
			CorrectAnswers: t.correct,
			Accuracy:       accuracy,
			Band:           BandFor(accuracy),
		})
	}
	return out
}

// summaries lists submissions newest first.
func summaries(submissions []domain.Submission) []domain.SubmissionSummary {
	out := make([]domain.SubmissionSummary, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, Summarize(s))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Summarize reduces a submission to its analytics row.
func Summarize(s domain.Submission) domain.SubmissionSummary {
	return domain.SubmissionSummary{
		ID:             s.ID,
		TakerName:      s.TakerName,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		Percentage:     s.Percentage,
		Band:           BandFor(s.Percentage),
		SubmittedAt:    s.SubmittedAt,
	}
}
