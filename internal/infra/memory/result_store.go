package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// ResultStore keeps the leaderboard in process memory.
type ResultStore struct {
	capacity int

	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewResultStore(capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = domain.LeaderboardSize
	}
	return &ResultStore{capacity: capacity}
}

func (s *ResultStore) Persist(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = domain.RankLeaderboard(append(s.entries, result.Entry()), s.capacity)
	return nil
}

func (s *ResultStore) List(context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LeaderboardEntry{}, s.entries...), nil
}

func (s *ResultStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// PlayerNameStore remembers the last player name.
type PlayerNameStore struct {
	mu   sync.RWMutex
	name string
}

func NewPlayerNameStore() *PlayerNameStore {
	return &PlayerNameStore{}
}

func (s *PlayerNameStore) Get(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name, nil
}

func (s *PlayerNameStore) Set(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return nil
}
