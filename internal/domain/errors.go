package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist or is not visible to the caller.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSubmissionNotFound indicates the submission does not exist for the quiz.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAdminNotFound indicates no administrator matches the lookup.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrInvalidQuiz wraps every quiz/question validation failure.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidSubmission is returned for submissions that cannot be decoded into answers.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrInvalidRegistration wraps registration validation failures.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, revoked or wrong-kind tokens.
	ErrInvalidToken = errors.New("invalid token")
)
