// Package sheet loads clues from a published spreadsheet CSV export.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cyberhunt/internal/domain"
)

// Expected header columns.
const (
	ColumnID     = "clue_id"
	ColumnTitle  = "title"
	ColumnAnswer = "answer_regex"
	ColumnHint   = "hint"
)

// Loader fetches the sheet with a single unauthenticated GET.
type Loader struct {
	url     string
	limit   int
	timeout time.Duration
	client  *http.Client
}

func NewLoader(url string, limit int, timeout time.Duration) *Loader {
	return &Loader{
		url:     url,
		limit:   limit,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// LoadQuestions fetches and parses the sheet. A row with a malformed answer
// pattern fails the whole load.
func (l *Loader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch sheet: unexpected status %s", resp.Status)
	}

	records, err := Parse(resp.Body, l.limit)
	if err != nil {
		return nil, err
	}
	return domain.BuildQuestions(records)
}

// Parse reads a CSV document with a header row and returns up to limit valid
// rows in source order. Rows missing an id, title or answer are skipped. An id
// that is not a number falls back to the row's 1-based position among the kept rows.
func Parse(r io.Reader, limit int) ([]domain.QuestionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse sheet header: %w", err)
	}
	cols := indexColumns(header)

	var out []domain.QuestionRecord
	for row := 1; limit <= 0 || len(out) < limit; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sheet row %d: %w", row, err)
		}

		rawID := cols.get(fields, ColumnID)
		title := cols.get(fields, ColumnTitle)
		answer := cols.get(fields, ColumnAnswer)
		if rawID == "" || title == "" || answer == "" {
			continue
		}

		out = append(out, domain.QuestionRecord{
			ID:          parseID(rawID, len(out)+1),
			Title:       title,
			AnswerRegex: answer,
			Hint:        cols.get(fields, ColumnHint),
		})
	}
	return out, nil
}

type columns map[string]int

func indexColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func (c columns) get(fields []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// parseID reads the leading integer of raw ("12", "12a" -> 12). Anything
// without one, or zero, gets the fallback position.
func parseID(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	id, err := strconv.Atoi(raw[:end])
	if err != nil || id == 0 {
		return fallback
	}
	return id
}
