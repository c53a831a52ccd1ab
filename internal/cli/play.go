package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/config"
	"millionaire-quiz/internal/domain"

	"github.com/spf13/cobra"
)

// NewPlayCmd plays a game in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var configID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if configID == "" {
				configID = defaultConfigID(cfg)
			}
			b, err := newBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			service := app.NewGameService(b.sessions, b.configs)
			return runPlay(cmd.Context(), service, configID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configID, "id", "", "game config id")
	return cmd
}

const playHelp = `Commands: a letter answers (or toggles on multi-select), "submit" sends the
selection, "ladder" shows the prize ladder, "again" restarts after a game over,
"quit" leaves.`

// console serializes writes from the input loop and the event printer.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

func runPlay(ctx context.Context, service *app.GameService, configID string, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := service.Start(ctx, configID)
	if err != nil {
		return err
	}
	events, cancel, err := service.Subscribe(ctx, session.ID())
	if err != nil {
		service.End(ctx, session.ID())
		return err
	}
	defer cancel()

	con := &console{w: out}
	con.printf("%s\n\n", playHelp)

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		printEvents(con, events)
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "q" {
			break
		}
		action, err := parseCommand(ctx, service, session.ID(), line)
		if err != nil {
			con.printf("! %v\n", err)
			continue
		}
		if _, err := service.Apply(ctx, session.ID(), action); err != nil {
			con.printf("! %v\n", err)
		}
	}

	service.End(ctx, session.ID())
	<-printerDone
	return scanner.Err()
}

func parseCommand(ctx context.Context, service *app.GameService, sessionID, line string) (domain.Action, error) {
	switch strings.ToLower(line) {
	case "submit", "s":
		return domain.Action{Type: domain.ActionSubmit}, nil
	case "again", "try again", "start":
		return domain.Action{Type: domain.ActionTryAgain}, nil
	case "ladder", "l":
		view, err := service.View(ctx, sessionID)
		if err != nil {
			return domain.Action{}, err
		}
		if view.AmountsOpen {
			return domain.Action{Type: domain.ActionCloseAmounts}, nil
		}
		return domain.Action{Type: domain.ActionOpenAmounts}, nil
	}

	view, err := service.View(ctx, sessionID)
	if err != nil {
		return domain.Action{}, err
	}
	for _, a := range view.Answers {
		if strings.EqualFold(a.Letter, line) {
			return domain.Action{Type: domain.ActionAnswer, AnswerID: a.ID}, nil
		}
	}
	return domain.Action{}, fmt.Errorf("unknown command %q", line)
}

// printEvents renders session events until the channel closes. Between a
// game-over navigation and the next play navigation only the summary shows.
func printEvents(con *console, events <-chan domain.Event) {
	over := false
	for ev := range events {
		switch ev.Type {
		case domain.EventNavigate:
			if ev.Navigation.Route == domain.RouteGameOver {
				over = true
				con.printf("\n*** Game over ***\nTotal score: %s earned\nType \"again\" to try again or \"quit\" to leave.\n", ev.Navigation.FormattedAmount)
				continue
			}
			over = false
		case domain.EventState:
			if over {
				continue
			}
			con.printf("%s", renderView(*ev.View))
		}
	}
}

func renderView(v domain.View) string {
	var b strings.Builder

	if v.AmountsOpen {
		b.WriteString("\nPrize ladder:\n")
		for _, row := range v.Ladder {
			mark := " "
			switch row.State {
			case domain.AmountActive:
				mark = ">"
			case domain.AmountDisabled:
				mark = "-"
			}
			fmt.Fprintf(&b, " %s %s\n", mark, row.Label)
		}
		b.WriteString("(type \"ladder\" to close)\n")
		return b.String()
	}

	prize := ""
	for _, row := range v.Ladder {
		if row.StepID == v.StepID {
			prize = row.Label
		}
	}
	fmt.Fprintf(&b, "\nQuestion %d of %d for %s\n%s\n", v.StepIndex+1, len(v.Ladder), prize, v.Question)
	for _, a := range v.Answers {
		suffix := ""
		switch a.State {
		case domain.AnswerSelected:
			suffix = "  [selected]"
		case domain.AnswerCorrect:
			suffix = "  [correct]"
		case domain.AnswerWrong:
			suffix = "  [wrong]"
		}
		fmt.Fprintf(&b, "  %s) %s%s\n", a.Letter, a.Text, suffix)
	}
	switch {
	case v.Locked:
		b.WriteString("...\n")
	case v.MultiSelect:
		b.WriteString("Select every correct answer, then type \"submit\".\n")
	}
	return b.String()
}
