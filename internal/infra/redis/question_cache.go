package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches fetched question sets in Redis and falls back to the
// wrapped source on miss. Sets are stored as JSON under
// trivia:questions:{category}:{difficulty}:{amount}.
type QuestionCache struct {
	client *redis.Client
	source app.QuestionSource
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCache(client *redis.Client, source app.QuestionSource, ttl time.Duration, log *zap.Logger) *QuestionCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FetchQuestions(ctx context.Context, settings domain.QuizSettings) ([]domain.RawQuestion, error) {
	key := c.key(settings)
	if qs, ok := c.lookup(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.lookup(ctx, key); ok {
			return qs, nil
		}

		qs, err := c.source.FetchQuestions(ctx, settings)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(qs)
		if err != nil {
			return nil, err
		}
		// best-effort fill
		if err := c.client.Set(ctx, key, data, c.ttlWithJitter()).Err(); err != nil {
			c.log.Warn("cache question set failed", zap.String("key", key), zap.Error(err))
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RawQuestion), nil
}

func (c *QuestionCache) Categories(ctx context.Context) ([]domain.Category, error) {
	return c.source.Categories(ctx)
}

func (c *QuestionCache) lookup(ctx context.Context, key string) ([]domain.RawQuestion, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("read question cache failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var qs []domain.RawQuestion
	if err := json.Unmarshal(data, &qs); err != nil || len(qs) == 0 {
		return nil, false
	}
	return qs, true
}

func (c *QuestionCache) key(settings domain.QuizSettings) string {
	return "trivia:questions:" + settings.QuestionSetKey()
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
