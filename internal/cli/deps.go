package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/opentdb"
	"trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deps is everything a command needs to drive quizzes.
type deps struct {
	service    *app.QuizService
	runnerOpts []app.RunnerOption
	closers    []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks backends from cfg: Postgres for results when configured,
// then Redis, then process memory.
func buildDeps(ctx context.Context, cfg config.Config, log *zap.Logger) (*deps, error) {
	d := &deps{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
	}

	var source app.QuestionSource
	if cfg.Trivia.Offline {
		source = memory.NewStaticQuestionSource(memory.SampleQuestions(), memory.SampleCategories())
	} else {
		opts := []opentdb.Option{
			opentdb.WithHTTPClient(&http.Client{Timeout: config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second)}),
			opentdb.WithLogger(log),
		}
		if cfg.Trivia.BaseURL != "" {
			opts = append(opts, opentdb.WithBaseURL(cfg.Trivia.BaseURL))
		}
		if cfg.Trivia.CategoriesURL != "" {
			opts = append(opts, opentdb.WithCategoriesURL(cfg.Trivia.CategoriesURL))
		}
		source = opentdb.NewClient(opts...)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var sessions app.SessionRepository
	var results app.ResultRecorder
	var players app.PlayerNameStore
	switch {
	case redisClient != nil:
		source = redisstore.NewQuestionCache(redisClient, source, quizTTL, log)
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		results = redisstore.NewResultStore(redisClient, cfg.Quiz.Leaderboard)
		players = redisstore.NewPlayerNameStore(redisClient)
	default:
		source = memory.NewQuestionCache(source, quizTTL)
		sessions = memory.NewSessionStore()
		results = memory.NewResultStore(cfg.Quiz.Leaderboard)
		players = memory.NewPlayerNameStore()
	}
	if pool != nil {
		results = postgres.NewResultStore(pool, cfg.Quiz.Leaderboard)
		players = postgres.NewPlayerNameStore(pool)
	}

	scoring, err := app.ScoringByName(cfg.Quiz.Scoring)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.service = app.NewQuizService(sessions, source, results, players,
		app.WithServiceScoring(scoring),
		app.WithServiceLogger(log))
	d.runnerOpts = []app.RunnerOption{
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.TickInterval, app.DefaultTickInterval)),
		app.WithFeedbackHold(config.TTLDuration(cfg.Quiz.FeedbackHold, app.DefaultFeedbackHold)),
		app.WithRunnerLogger(log),
	}

	log.Info("backends selected",
		zap.Bool("redis", redisClient != nil),
		zap.Bool("postgres", pool != nil),
		zap.Bool("offline_questions", cfg.Trivia.Offline),
		zap.String("scoring", scoring.Name()),
		zap.Int("leaderboard_size", leaderboardSize(cfg)))
	return d, nil
}

func leaderboardSize(cfg config.Config) int {
	if cfg.Quiz.Leaderboard <= 0 {
		return domain.LeaderboardSize
	}
	return cfg.Quiz.Leaderboard
}
