package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"cyberhunt/internal/config"
	"cyberhunt/internal/domain"
	pgloader "cyberhunt/internal/infra/postgres"
	"cyberhunt/internal/infra/sheet"
	"cyberhunt/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewQuestionsCmd fetches the configured clue set and prints it, which is the
// quickest way to check a sheet before an event.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Fetch and print the question set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New("warn", cfg.Log.File)
			defer func() { _ = log.Sync() }()

			loader, closeLoader, err := newQuestionLoader(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeLoader()

			questions, err := loader.LoadQuestions(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tTITLE\tANSWER\tHINT")
			for i, q := range questions {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", i+1, q.ID, q.Title, q.AnswerPattern, q.Hint)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d questions\n", len(questions))
			return nil
		},
	}
	cmd.AddCommand(newImportCmd(configPath))
	return cmd
}

// newImportCmd copies the sheet into the clues table so the event can run
// with questions.source: postgres.
func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the sheet's clues into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.File)
			defer func() { _ = log.Sync() }()

			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			timeout := config.TTLDuration(cfg.Questions.Timeout, 15*time.Second)
			questions, err := sheet.NewLoader(cfg.Questions.URL, cfg.Questions.Limit, timeout).LoadQuestions(cmd.Context())
			if err != nil {
				return err
			}
			records := make([]domain.QuestionRecord, 0, len(questions))
			for _, q := range questions {
				records = append(records, q.Record())
			}

			db := openBunDB(cfg.Postgres.URL)
			defer db.Close()
			if err := pgloader.ReplaceClues(cmd.Context(), db, records); err != nil {
				return err
			}
			log.Info("clues imported", zap.Int("count", len(records)))
			return nil
		},
	}
}
