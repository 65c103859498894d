package domain

import "fmt"

// Validate checks the settings against the allowed bounds.
func (s QuizSettings) Validate() error {
	if s.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidSettings)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSettings, s.Difficulty)
	}
	if s.Amount < MinAmount || s.Amount > MaxAmount {
		return fmt.Errorf("%w: amount %d outside %d-%d", ErrInvalidSettings, s.Amount, MinAmount, MaxAmount)
	}
	if s.TimeLimit < MinTimeLimit || s.TimeLimit > MaxTimeLimit {
		return fmt.Errorf("%w: time limit %d outside %d-%d", ErrInvalidSettings, s.TimeLimit, MinTimeLimit, MaxTimeLimit)
	}
	return nil
}

// DefaultSettings mirrors the configuration form defaults.
func DefaultSettings() QuizSettings {
	return QuizSettings{
		Category:   AnyCategory,
		Difficulty: DifficultyEasy,
		Amount:     10,
		TimeLimit:  30,
	}
}

// QuestionSetKey identifies the question set these settings request.
// TimeLimit does not affect which questions are fetched.
func (s QuizSettings) QuestionSetKey() string {
	return fmt.Sprintf("%s:%s:%d", s.Category, s.Difficulty, s.Amount)
}
