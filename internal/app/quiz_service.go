package app

import (
	"context"
	"fmt"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/questions"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where live game sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuestionSource supplies raw trivia questions.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, settings domain.QuizSettings) ([]domain.RawQuestion, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

func WithNormalizer(n *questions.Normalizer) ServiceOption {
	return func(s *QuizService) { s.normalizer = n }
}

func WithServiceScoring(strategy ScoringStrategy) ServiceOption {
	return func(s *QuizService) { s.scoring = strategy }
}

func WithServiceLogger(log *zap.Logger) ServiceOption {
	return func(s *QuizService) { s.log = log }
}

// WithServiceClock is test-only for deterministic timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

// QuizService contains the quiz use cases shared by transports and the CLI.
type QuizService struct {
	sessions   SessionRepository
	source     QuestionSource
	recorder   ResultRecorder
	players    PlayerNameStore
	normalizer *questions.Normalizer
	scoring    ScoringStrategy
	log        *zap.Logger
	now        func() time.Time
}

func NewQuizService(sessions SessionRepository, source QuestionSource, recorder ResultRecorder, players PlayerNameStore, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions: sessions,
		source:   source,
		recorder: recorder,
		players:  players,
		scoring:  PercentageScoring{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = questions.New(nil)
	}
	return s
}

// NewGame fetches and normalizes a question set, then starts a registered session on it.
func (s *QuizService) NewGame(ctx context.Context, settings domain.QuizSettings, opts ...SessionOption) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	raw, err := s.source.FetchQuestions(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	qs := s.normalizer.Normalize(raw)

	base := []SessionOption{
		WithClock(s.now),
		WithRecorder(s.recorder),
		WithPlayerNames(s.players),
		WithScoring(s.scoring),
		WithLogger(s.log),
	}
	session := NewSession(uuid.NewString(), append(base, opts...)...)
	if err := session.Start(ctx, qs, settings); err != nil {
		return nil, err
	}
	s.sessions.Put(session)

	s.log.Info("new game",
		zap.String("session", session.ID()),
		zap.String("category", settings.Category),
		zap.String("difficulty", string(settings.Difficulty)),
		zap.Int("questions", len(qs)))
	return session, nil
}

// Session looks up a live game.
func (s *QuizService) Session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// EndGame resets the session, releasing its runner, and forgets it.
func (s *QuizService) EndGame(id string) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	session.Reset()
	s.sessions.Delete(id)
}

// Leaderboard returns the stored ranking.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := s.recorder.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}

func (s *QuizService) ClearLeaderboard(ctx context.Context) error {
	if err := s.recorder.Clear(ctx); err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	return nil
}

// PlayerName returns the remembered name, "" when none is stored.
func (s *QuizService) PlayerName(ctx context.Context) (string, error) {
	return s.players.Get(ctx)
}

func (s *QuizService) SetPlayerName(ctx context.Context, name string) error {
	return s.players.Set(ctx, name)
}

// Categories lists trivia categories; a failing source yields an empty list.
func (s *QuizService) Categories(ctx context.Context) []domain.Category {
	categories, err := s.source.Categories(ctx)
	if err != nil {
		s.log.Warn("fetch categories failed", zap.Error(err))
		return []domain.Category{}
	}
	return categories
}
