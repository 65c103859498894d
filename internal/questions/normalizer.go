// Package questions turns raw trivia records into display-ready questions.
package questions

import (
	"html"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Normalizer decodes escaped text and shuffles answer choices.
type Normalizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Normalizer drawing from rnd. A nil rnd is seeded from the clock.
func New(rnd *rand.Rand) *Normalizer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Normalizer{rnd: rnd}
}

// NewSeeded returns a Normalizer with a deterministic shuffle.
func NewSeeded(seed int64) *Normalizer {
	return New(rand.New(rand.NewSource(seed)))
}

// Normalize decodes every question and builds its shuffled choice list.
// Input order is preserved.
func (n *Normalizer) Normalize(raw []domain.RawQuestion) []domain.Question {
	out := make([]domain.Question, 0, len(raw))
	for _, rq := range raw {
		out = append(out, n.normalizeOne(rq))
	}
	return out
}

func (n *Normalizer) normalizeOne(rq domain.RawQuestion) domain.Question {
	correct := html.UnescapeString(rq.CorrectAnswer)
	incorrect := make([]string, 0, len(rq.IncorrectAnswers))
	for _, a := range rq.IncorrectAnswers {
		incorrect = append(incorrect, html.UnescapeString(a))
	}

	choices := make([]string, 0, len(incorrect)+1)
	choices = append(choices, incorrect...)
	choices = append(choices, correct)
	n.Shuffle(choices)

	return domain.Question{
		Category:         html.UnescapeString(rq.Category),
		Difficulty:       rq.Difficulty,
		Text:             html.UnescapeString(rq.Question),
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
		Choices:          choices,
	}
}

// Shuffle permutes s in place (Fisher-Yates, last index down to 1).
func (n *Normalizer) Shuffle(s []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(s) - 1; i > 0; i-- {
		j := n.rnd.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
