package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"trivia-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Keys shared with the browser build's local storage layout.
const (
	LeaderboardKey = "quiz_leaderboard"
	PlayerNameKey  = "quiz_player_name"
)

// ResultStore keeps the ranked leaderboard as one JSON list, replaced on
// every write. A watched transaction keeps concurrent writers from losing entries.
type ResultStore struct {
	client   *redis.Client
	capacity int
}

func NewResultStore(client *redis.Client, capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = domain.LeaderboardSize
	}
	return &ResultStore{client: client, capacity: capacity}
}

// maxTxRetries bounds optimistic-lock retries when writers collide.
const maxTxRetries = 10

func (s *ResultStore) Persist(ctx context.Context, result domain.QuizResult) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.persistOnce(ctx, result)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("persist result %s: %w", result.ID, redis.TxFailedErr)
}

func (s *ResultStore) persistOnce(ctx context.Context, result domain.QuizResult) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		entries, err := readEntries(ctx, tx, LeaderboardKey)
		if err != nil {
			return err
		}
		entries = domain.RankLeaderboard(append(entries, result.Entry()), s.capacity)
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode leaderboard: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, LeaderboardKey, data, 0)
			return nil
		})
		return err
	}, LeaderboardKey)
}

// List returns the stored entries; a missing key is an empty leaderboard.
func (s *ResultStore) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return readEntries(ctx, s.client, LeaderboardKey)
}

func (s *ResultStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, LeaderboardKey).Err()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readEntries(ctx context.Context, c stringGetter, key string) ([]domain.LeaderboardEntry, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}

// PlayerNameStore keeps the remembered player name under PlayerNameKey.
type PlayerNameStore struct {
	client *redis.Client
}

func NewPlayerNameStore(client *redis.Client) *PlayerNameStore {
	return &PlayerNameStore{client: client}
}

func (s *PlayerNameStore) Get(ctx context.Context) (string, error) {
	name, err := s.client.Get(ctx, PlayerNameKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return name, err
}

func (s *PlayerNameStore) Set(ctx context.Context, name string) error {
	return s.client.Set(ctx, PlayerNameKey, name, 0).Err()
}
