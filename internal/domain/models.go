package domain

import "time"

// Difficulty is the trivia difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

const (
	// AnyCategory requests questions from every category.
	AnyCategory = "any"
	// MixedCategory labels results of sessions played with AnyCategory.
	MixedCategory = "Mixed"
	// NoAnswer is recorded when the player skipped or ran out of time.
	NoAnswer = "No answer"
)

// Settings bounds.
const (
	MinAmount    = 5
	MaxAmount    = 50
	MinTimeLimit = 10
	MaxTimeLimit = 60
)

// RawQuestion is a question as delivered by the trivia source, text still HTML-escaped.
type RawQuestion struct {
	Category         string     `json:"category"`
	Type             string     `json:"type"`
	Difficulty       Difficulty `json:"difficulty"`
	Question         string     `json:"question"`
	CorrectAnswer    string     `json:"correct_answer"`
	IncorrectAnswers []string   `json:"incorrect_answers"`
}

// Question is a normalized question. Choices is fixed once built and holds
// the correct answer exactly once.
type Question struct {
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	Text             string     `json:"question"`
	CorrectAnswer    string     `json:"correctAnswer"`
	IncorrectAnswers []string   `json:"incorrectAnswers"`
	Choices          []string   `json:"choices"`
}

// HasChoice reports whether answer is one of the displayed choices.
func (q Question) HasChoice(answer string) bool {
	for _, c := range q.Choices {
		if c == answer {
			return true
		}
	}
	return false
}

// QuizSettings configures one session.
type QuizSettings struct {
	Category   string     `json:"category" yaml:"category"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Amount     int        `json:"amount" yaml:"amount"`
	TimeLimit  int        `json:"timeLimit" yaml:"timeLimit"` // seconds per question
}

// AnswerRecord is the immutable outcome of one question.
type AnswerRecord struct {
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Skipped        bool   `json:"skipped,omitempty"` // skip or timeout; SelectedAnswer holds NoAnswer
	TimeSpent      int    `json:"timeSpent"`
}

// QuizResult is produced once per completed session.
type QuizResult struct {
	ID             string         `json:"id"`
	PlayerName     string         `json:"playerName"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Points         int            `json:"points,omitempty"`
	TimeSpent      int            `json:"timeSpent"`
	Category       string         `json:"category"`
	Difficulty     Difficulty     `json:"difficulty"`
	CompletedAt    time.Time      `json:"completedAt"`
	Answers        []AnswerRecord `json:"answers"`
}

// Entry projects the result onto a leaderboard row.
func (r QuizResult) Entry() LeaderboardEntry {
	return LeaderboardEntry{
		ID:             r.ID,
		PlayerName:     r.PlayerName,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		Category:       r.Category,
		Difficulty:     r.Difficulty,
		CompletedAt:    r.CompletedAt,
	}
}

// LeaderboardEntry is a snapshot-friendly view of a result.
type LeaderboardEntry struct {
	ID             string     `json:"id"`
	PlayerName     string     `json:"playerName"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Percentage     int        `json:"percentage"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	CompletedAt    time.Time  `json:"completedAt"`
}

// Category is a trivia category as listed by the question source.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// State is the phase of a quiz session.
type State int

const (
	StateIdle State = iota
	StateAwaitingAnswer
	StateFeedback
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateFeedback:
		return "feedback"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}
