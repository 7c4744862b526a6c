package postgres

import (
	"context"
	"fmt"

	"cyberhunt/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ClueLoader loads the clue set from the clues table.
type ClueLoader struct {
	pool  *pgxpool.Pool
	limit int
}

func NewClueLoader(pool *pgxpool.Pool, limit int) *ClueLoader {
	return &ClueLoader{pool: pool, limit: limit}
}

func (l *ClueLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT clue_id, title, answer_regex, hint
		FROM clues
		WHERE title <> '' AND answer_regex <> ''
		ORDER BY position
		LIMIT $1`, l.limit)
	if err != nil {
		return nil, fmt.Errorf("load clues: %w", err)
	}
	defer rows.Close()

	var records []domain.QuestionRecord
	for rows.Next() {
		var r domain.QuestionRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.AnswerRegex, &r.Hint); err != nil {
			return nil, fmt.Errorf("scan clue: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load clues: %w", err)
	}
	return domain.BuildQuestions(records)
}
