package domain

import "time"

// Band is a display bucket for percentages and accuracies.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// QuestionAnalytics aggregates how takers did on a single question.
type QuestionAnalytics struct {
	QuestionID     string       `json:"question_id"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	TotalAnswers   int          `json:"total_answers"`
	CorrectAnswers int          `json:"correct_answers"`
	Accuracy       int          `json:"accuracy"`
	Band           Band         `json:"band"`
}

// SubmissionSummary is one row of the analytics submission list.
type SubmissionSummary struct {
	ID             string    `json:"id"`
	TakerName      string    `json:"taker_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	Band           Band      `json:"band"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// QuizAnalytics is the aggregate view over every submission of a quiz.
type QuizAnalytics struct {
	QuizID            string              `json:"quiz_id"`
	QuizTitle         string              `json:"quiz_title"`
	TotalSubmissions  int                 `json:"total_submissions"`
	AverageScore      float64             `json:"average_score"`
	AveragePercentage int                 `json:"average_percentage"`
	PassRate          int                 `json:"pass_rate"`
	HighestScore      int                 `json:"highest_score"`
	HighestScoreTotal int                 `json:"highest_score_total"`
	LowestScore       int                 `json:"lowest_score"`
	LowestScoreTotal  int                 `json:"lowest_score_total"`
	QuestionAnalytics []QuestionAnalytics `json:"question_analytics"`
	Submissions       []SubmissionSummary `json:"submissions"`
}
