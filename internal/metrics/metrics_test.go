package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAnswer(t *testing.T) {
	m := New()
	m.ObserveAnswer(true)
	m.ObserveAnswer(false)
	m.ObserveAnswer(false)

	if got := testutil.ToFloat64(m.Answers.WithLabelValues("correct")); got != 1 {
		t.Fatalf("expected 1 correct, got %v", got)
	}
	if got := testutil.ToFloat64(m.Answers.WithLabelValues("incorrect")); got != 2 {
		t.Fatalf("expected 2 incorrect, got %v", got)
	}
}

func TestHandlerUsesPrivateRegistry(t *testing.T) {
	a, b := New(), New()
	a.Teams.Set(4)
	b.Teams.Set(9)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "cyberhunt_teams 4") {
		t.Fatalf("expected teams gauge, got:\n%s", body)
	}
}
