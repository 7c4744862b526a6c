package redis

import (
	"context"
	"testing"
	"time"

	"cyberhunt/internal/domain"
	"cyberhunt/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions(t)),
	}
	repo := NewQuestionRepository(client, loader, "sheet", time.Minute)

	qs, err := repo.GetQuestions(context.Background())
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 || len(qs) != 2 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("cyberhunt:questions:sheet") {
		t.Fatalf("expected redis key to be set")
	}

	// A fresh repository (as after a restart) is served from Redis.
	restarted := NewQuestionRepository(client, loader, "sheet", time.Minute)
	cached, err := restarted.GetQuestions(context.Background())
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached) != 2 || cached[1].Title != "Malware that holds files hostage" {
		t.Fatalf("unexpected cached questions %+v", cached)
	}
	if !cached[0].Matches("PHISHING") || cached[0].Matches("vishing") {
		t.Fatalf("cached pattern not recompiled correctly")
	}
}

func TestQuestionRepositoryInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions(t))}
	repo := NewQuestionRepository(newClient(mr), loader, "sheet", time.Minute)

	_, _ = repo.GetQuestions(context.Background())
	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("cyberhunt:questions:sheet") {
		t.Fatalf("expected redis key to be removed")
	}
	_, _ = repo.GetQuestions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuestionRepositoryIgnoresCorruptEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("cyberhunt:questions:sheet", `[{"clue_id":1,"title":"x","answer_regex":"(broken"}]`)

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions(t))}
	repo := NewQuestionRepository(newClient(mr), loader, "sheet", time.Minute)

	qs, err := repo.GetQuestions(context.Background())
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 || len(qs) != 2 {
		t.Fatalf("expected fallback to loader, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

func sampleQuestions(t *testing.T) []domain.Question {
	t.Helper()
	q1, err := domain.NewQuestion(1, "What lures you with fake emails?", "^phish", "think bait")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	q2, err := domain.NewQuestion(2, "Malware that holds files hostage", `ransom\s*ware`, "")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	return []domain.Question{q1, q2}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
