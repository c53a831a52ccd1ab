package cli

import (
	"errors"
	"fmt"
	"io"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"
	"millionaire-quiz/internal/infra/file"
	"millionaire-quiz/internal/money"

	"github.com/spf13/cobra"
)

var errNoFile = errors.New("--file is required")

// NewValidateCmd checks a JSON game config and prints its ladder.
func NewValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON game config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errNoFile
			}
			cfg, err := file.ReadConfig(path)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "JSON config file")
	return cmd
}

func printSummary(w io.Writer, cfg domain.GameConfig) {
	multi := 0
	for _, s := range cfg.Steps {
		if s.Question.IsMultiSelect() {
			multi++
		}
	}
	fmt.Fprintf(w, "ok: %d steps (%d multi-select), currency %s\n", len(cfg.Steps), multi, cfg.Currency)
	for i := len(cfg.Steps) - 1; i >= 0; i-- {
		s := cfg.Steps[i]
		fmt.Fprintf(w, "  %2d  %-16s %s\n", i+1, money.FormatCurrency(s.Amount, cfg.Currency), s.Question.Text)
		for j, a := range s.Question.Answers {
			mark := " "
			for _, id := range s.Question.CorrectAnswerIDs {
				if id == a.ID {
					mark = "*"
				}
			}
			fmt.Fprintf(w, "        %s %s) %s\n", mark, app.AnswerLetter(j), a.Text)
		}
	}
}
