package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrAlreadyAnswered is returned when the current question already has an answer.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNoQuestions is returned when a session is started without questions.
	ErrNoQuestions = errors.New("question list is empty")
	// ErrInvalidTimeLimit is returned for a non-positive per-question time limit.
	ErrInvalidTimeLimit = errors.New("time limit must be positive")
	// ErrUnknownChoice indicates the submitted answer is not one of the displayed choices.
	ErrUnknownChoice = errors.New("answer is not one of the choices")
	// ErrInvalidSettings wraps quiz settings outside the allowed bounds.
	ErrInvalidSettings = errors.New("invalid quiz settings")
	// ErrSessionNotFound is returned when a game session is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
)

// Question source failures, keyed off the trivia API response code.
var (
	ErrFetchFailed      = errors.New("failed to fetch quiz data")
	ErrNoResults        = errors.New("no results found, try different settings")
	ErrInvalidParameter = errors.New("invalid parameter, please check your settings")
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenEmpty       = errors.New("token empty")
	ErrRateLimited      = errors.New("too many requests, wait a few seconds")
	ErrUnknownResponse  = errors.New("an unknown error occurred")
)

// FetchError carries the trivia API response code alongside its descriptive error.
type FetchError struct {
	Code int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("trivia api (code %d): %v", e.Code, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResponseCodeError maps a trivia API response code to its error. Code 0 is success.
func ResponseCodeError(code int) error {
	var err error
	switch code {
	case 0:
		return nil
	case 1:
		err = ErrNoResults
	case 2:
		err = ErrInvalidParameter
	case 3:
		err = ErrTokenNotFound
	case 4:
		err = ErrTokenEmpty
	case 5:
		err = ErrRateLimited
	default:
		err = ErrUnknownResponse
	}
	return &FetchError{Code: code, Err: err}
}
