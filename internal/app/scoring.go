package app

import (
	"fmt"
	"math"

	"trivia-quiz-service/internal/domain"
)

// ScoringStrategy computes the optional points total of a finished session.
// Score and Percentage are always the count of correct answers; strategies
// only decide Points.
type ScoringStrategy interface {
	Name() string
	Points(answers []domain.AnswerRecord, timeLimit int) int
}

// PercentageScoring is the leaderboard model: no points, percentage only.
type PercentageScoring struct{}

func (PercentageScoring) Name() string { return "percentage" }

func (PercentageScoring) Points([]domain.AnswerRecord, int) int { return 0 }

// PointsScoring awards a base per correct answer plus a bonus proportional
// to the time left on the countdown.
type PointsScoring struct {
	Base     int
	MaxBonus int
}

// DefaultPointsScoring is 1000 base plus up to 1000 time bonus.
func DefaultPointsScoring() PointsScoring {
	return PointsScoring{Base: 1000, MaxBonus: 1000}
}

func (PointsScoring) Name() string { return "points" }

func (p PointsScoring) Points(answers []domain.AnswerRecord, timeLimit int) int {
	if timeLimit <= 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		if !a.IsCorrect {
			continue
		}
		left := timeLimit - a.TimeSpent
		if left < 0 {
			left = 0
		}
		total += p.Base + int(math.Floor(float64(left)/float64(timeLimit)*float64(p.MaxBonus)))
	}
	return total
}

// ScoringByName resolves a configured scoring mode. Empty selects percentage.
func ScoringByName(name string) (ScoringStrategy, error) {
	switch name {
	case "", "percentage":
		return PercentageScoring{}, nil
	case "points":
		return DefaultPointsScoring(), nil
	}
	return nil, fmt.Errorf("unknown scoring mode %q", name)
}

// Percentage returns round(100*score/total); 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
