package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session id or code matches nothing.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a participant id matches nothing.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrInvalidStatus rejects a status transition outside the allowed table.
	ErrInvalidStatus = errors.New("invalid status update")
	// ErrNoQuestions rejects activating a session whose quiz has no questions.
	ErrNoQuestions = errors.New("quiz must have questions")
	// ErrSessionCodeTaken rejects a join code already in use.
	ErrSessionCodeTaken = errors.New("session code already in use")
	// ErrSessionComplete rejects joining a completed session.
	ErrSessionComplete = errors.New("quiz session is complete")
	// ErrSessionCanceled rejects joining a canceled session.
	ErrSessionCanceled = errors.New("quiz session is canceled")
	// ErrInvalidQuestion rejects a submission for a question that is not active.
	ErrInvalidQuestion = errors.New("question is not active")
	// ErrQuestionOver rejects a submission past the question deadline.
	ErrQuestionOver = errors.New("question deadline has passed")
	// ErrInvalidAnswer rejects an answer that does not belong to the question.
	ErrInvalidAnswer = errors.New("answer does not belong to question")

	// ErrUnauthorized rejects a request whose principal may not act on the session.
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidToken is returned by identity verification for unknown credentials.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoSubscribers reports a publish that found an empty fanout channel.
	ErrNoSubscribers = errors.New("no subscribers for session")
)
