package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"cyberhunt/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the clue set from its source (sheet, database).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the clue set in Redis and falls back to a loader on cache miss.
// Rows are stored uncompiled as JSON: SET cyberhunt:questions:{source} [{clue_id,title,answer_regex,hint}...]
// Only clue content lives here; team progress is never written to Redis.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	source string
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, source string, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := r.fromCache(ctx); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(r.key(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.fromCache(ctx); ok {
			return qs, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		records := make([]domain.QuestionRecord, 0, len(questions))
		for _, q := range questions {
			records = append(records, q.Record())
		}
		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode questions: %w", err)
		}
		// best-effort; a failed write only costs a refetch
		_ = r.client.Set(ctx, r.key(), data, r.ttlWithJitter()).Err()

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached rows.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

// fromCache treats unreadable or uncompilable entries as a miss.
func (r *QuestionRepository) fromCache(ctx context.Context) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		// redis.Nil on a plain miss; connection errors degrade to the loader too
		return nil, false
	}
	var records []domain.QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	questions, err := domain.BuildQuestions(records)
	if err != nil {
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) key() string {
	return "cyberhunt:questions:" + r.source
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
