package domain

import (
	"errors"
	"testing"
)

func TestQuestionMatchesCaseInsensitively(t *testing.T) {
	q, err := NewQuestion(7, "Port for HTTPS?", `^(443|four forty three)$`, "")
	if err != nil {
		t.Fatalf("new question: %v", err)
	}

	cases := map[string]bool{
		"443":               true,
		"  443\n":           true,
		"FOUR FORTY THREE":  true,
		"Four Forty Three ": true,
		"4430":              false,
		"port 443":          false,
		"":                  false,
	}
	for in, want := range cases {
		if got := q.Matches(in); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestQuestionMatchesAnywhereWhenUnanchored(t *testing.T) {
	q, err := NewQuestion(1, "Bait by email", `phish`, "")
	if err != nil {
		t.Fatalf("new question: %v", err)
	}
	if !q.Matches("it was a Phishing campaign") {
		t.Fatalf("expected substring match")
	}
}

func TestQuestionSupportsLookahead(t *testing.T) {
	q, err := NewQuestion(1, "Strong password", `^(?=.*\d)(?=.*[a-z]).{8,}$`, "")
	if err != nil {
		t.Fatalf("new question: %v", err)
	}
	if !q.Matches("hunter2hunter") || q.Matches("password") {
		t.Fatalf("lookahead semantics not honoured")
	}
}

func TestNewQuestionRejectsMalformedPattern(t *testing.T) {
	_, err := NewQuestion(3, "Broken", `(unclosed`, "")
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestQuestionDefaults(t *testing.T) {
	q, err := QuestionRecord{ID: 2, Title: "t", AnswerRegex: "a", Hint: "h"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.Points != 5 || q.HintCost != 3 {
		t.Fatalf("unexpected scoring constants %+v", q)
	}
	if q.Record().AnswerRegex != "a" {
		t.Fatalf("record lost pattern")
	}
}

func TestIndexSetCopyOnWrite(t *testing.T) {
	var empty IndexSet
	one := empty.With(1)
	two := one.With(0)

	if empty.Has(1) || one.Has(0) {
		t.Fatalf("With mutated its receiver")
	}
	got := two.Sorted()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected sorted set %v", got)
	}
}
