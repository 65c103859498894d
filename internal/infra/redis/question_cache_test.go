package redis

import (
	"context"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	source := &countingSource{
		QuestionSource: memory.NewStaticQuestionSource(memory.SampleQuestions(), nil),
	}
	cache := NewQuestionCache(client, source, time.Minute, nil)
	settings := domain.DefaultSettings()

	first, err := cache.FetchQuestions(context.Background(), settings)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}
	if !mr.Exists("trivia:questions:any:easy:10") {
		t.Fatalf("expected question set key in redis")
	}

	// Second call should hit cache, source not incremented.
	second, _ := cache.FetchQuestions(context.Background(), settings)
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
	if len(second) != len(first) || second[0].Question != first[0].Question {
		t.Fatalf("cached set differs from fetched set")
	}

	mr.FastForward(2 * time.Minute)
	_, _ = cache.FetchQuestions(context.Background(), settings)
	if source.calls != 2 {
		t.Fatalf("expected reload after expiry, source calls=%d", source.calls)
	}
}

func TestQuestionCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	source := &countingSource{
		QuestionSource: memory.NewStaticQuestionSource(memory.SampleQuestions(), nil),
	}
	cache := NewQuestionCache(client, source, time.Minute, nil)
	qs, err := cache.FetchQuestions(context.Background(), domain.DefaultSettings())
	if err != nil {
		t.Fatalf("expected source fallback, got %v", err)
	}
	if len(qs) == 0 {
		t.Fatalf("expected questions from source")
	}
}

type countingSource struct {
	app.QuestionSource
	calls int
}

func (s *countingSource) FetchQuestions(ctx context.Context, settings domain.QuizSettings) ([]domain.RawQuestion, error) {
	s.calls++
	return s.QuestionSource.FetchQuestions(ctx, settings)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
