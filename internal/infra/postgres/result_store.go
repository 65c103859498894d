package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trivia-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PlayerNameKey is the kv_store key holding the remembered player name.
const PlayerNameKey = "quiz_player_name"

// ResultStore keeps results in the quiz_results table, trimmed to the top
// capacity rows after each insert.
type ResultStore struct {
	pool     *pgxpool.Pool
	capacity int
}

func NewResultStore(pool *pgxpool.Pool, capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = domain.LeaderboardSize
	}
	return &ResultStore{pool: pool, capacity: capacity}
}

const rankOrder = `percentage DESC, score DESC, inserted_at ASC`

func (s *ResultStore) Persist(ctx context.Context, result domain.QuizResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO quiz_results
			(id, player_name, score, total_questions, percentage, points, time_spent, category, difficulty, completed_at, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)`,
		result.ID, result.PlayerName, result.Score, result.TotalQuestions, result.Percentage,
		result.Points, result.TimeSpent, result.Category, string(result.Difficulty), result.CompletedAt, string(answers))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM quiz_results
		WHERE id NOT IN (SELECT id FROM quiz_results ORDER BY `+rankOrder+` LIMIT $1)`, s.capacity)
	if err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *ResultStore) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_name, score, total_questions, percentage, category, difficulty, completed_at
		FROM quiz_results ORDER BY `+rankOrder+` LIMIT $1`, s.capacity)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		var difficulty string
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &e.TotalQuestions, &e.Percentage,
			&e.Category, &difficulty, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		e.Difficulty = domain.Difficulty(difficulty)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Result loads one full result including its answers.
func (s *ResultStore) Result(ctx context.Context, id string) (domain.QuizResult, error) {
	var r domain.QuizResult
	var difficulty string
	var answers []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, player_name, score, total_questions, percentage, points, time_spent, category, difficulty, completed_at, answers
		FROM quiz_results WHERE id=$1`, id).Scan(
		&r.ID, &r.PlayerName, &r.Score, &r.TotalQuestions, &r.Percentage, &r.Points,
		&r.TimeSpent, &r.Category, &difficulty, &r.CompletedAt, &answers)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("load result: %w", err)
	}
	r.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal(answers, &r.Answers); err != nil {
		return domain.QuizResult{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return r, nil
}

func (s *ResultStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM quiz_results`)
	return err
}

// PlayerNameStore keeps the player name in the kv_store table.
type PlayerNameStore struct {
	pool *pgxpool.Pool
}

func NewPlayerNameStore(pool *pgxpool.Pool) *PlayerNameStore {
	return &PlayerNameStore{pool: pool}
}

func (s *PlayerNameStore) Get(ctx context.Context) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1`, PlayerNameKey).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load player name: %w", err)
	}
	return name, nil
}

func (s *PlayerNameStore) Set(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value`, PlayerNameKey, name)
	return err
}
