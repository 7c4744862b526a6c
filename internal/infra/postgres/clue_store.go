package postgres

import (
	"context"
	"fmt"

	"cyberhunt/internal/domain"
	"github.com/uptrace/bun"
)

type clueRow struct {
	bun.BaseModel `bun:"table:clues"`

	ClueID      int    `bun:"clue_id"`
	Position    int    `bun:"position,pk"`
	Title       string `bun:"title"`
	AnswerRegex string `bun:"answer_regex"`
	Hint        string `bun:"hint"`
}

// ReplaceClues swaps the whole clues table for records, keeping their order.
func ReplaceClues(ctx context.Context, db *bun.DB, records []domain.QuestionRecord) error {
	rows := make([]clueRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, clueRow{
			ClueID:      r.ID,
			Position:    i,
			Title:       r.Title,
			AnswerRegex: r.AnswerRegex,
			Hint:        r.Hint,
		})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*clueRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear clues: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert clues: %w", err)
		}
		return nil
	})
}
