package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"
	"millionaire-quiz/internal/infra/file"
	"millionaire-quiz/internal/infra/memory"
)

var immediate = app.SchedulerFunc(func(_ time.Duration, fn func()) { fn() })

func newPlayService() *app.GameService {
	configs := memory.NewConfigRepository(file.NewLoader(""), time.Minute)
	return app.NewGameService(memory.NewSessionStore(), configs, app.WithScheduler(immediate))
}

func TestRunPlayWrongAnswerShowsGameOver(t *testing.T) {
	var out bytes.Buffer
	// The first bundled question is answered by B; A is wrong.
	in := strings.NewReader("A\nquit\n")

	if err := runPlay(context.Background(), newPlayService(), file.DefaultConfigID, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Question 1 of 12") {
		t.Fatalf("expected first question, got:\n%s", text)
	}
	if !strings.Contains(text, "[wrong]") {
		t.Fatalf("expected wrong reveal, got:\n%s", text)
	}
	if !strings.Contains(text, "Total score: $0 earned") {
		t.Fatalf("expected game over summary, got:\n%s", text)
	}
}

func TestRunPlayTryAgainStartsFromFirstQuestion(t *testing.T) {
	var out bytes.Buffer
	// A loses; B would clear the first question but arrives on the game-over screen.
	in := strings.NewReader("A\nB\nagain\nquit\n")

	if err := runPlay(context.Background(), newPlayService(), file.DefaultConfigID, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, domain.ErrGameOver.Error()) {
		t.Fatalf("expected answer on game over to be refused, got:\n%s", text)
	}
	over := strings.Index(text, "Total score")
	if over < 0 {
		t.Fatalf("expected game over summary, got:\n%s", text)
	}
	after := text[over:]
	if !strings.Contains(after, "Question 1 of 12") {
		t.Fatalf("expected the first question after trying again, got:\n%s", after)
	}
	if strings.Contains(text, "Question 2 of 12") {
		t.Fatalf("hidden answer advanced the game:\n%s", text)
	}
}

func TestRunPlayReportsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Z\nsubmit\n")

	if err := runPlay(context.Background(), newPlayService(), file.DefaultConfigID, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, `unknown command "Z"`) {
		t.Fatalf("expected unknown command error, got:\n%s", text)
	}
	if !strings.Contains(text, domain.ErrSelectionMode.Error()) {
		t.Fatalf("expected selection mode error, got:\n%s", text)
	}
}

func TestRunPlayUnknownConfig(t *testing.T) {
	err := runPlay(context.Background(), newPlayService(), "nope", strings.NewReader(""), &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected error for unknown config")
	}
}

func TestRenderViewLadder(t *testing.T) {
	v := domain.View{
		AmountsOpen: true,
		Ladder: []domain.AmountView{
			{StepID: "s2", Label: "$200", State: domain.AmountInactive},
			{StepID: "s1", Label: "$100", State: domain.AmountActive},
		},
	}
	got := renderView(v)
	if !strings.Contains(got, "> $100") || !strings.Contains(got, "  $200") {
		t.Fatalf("unexpected ladder:\n%s", got)
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, file.Default())
	text := out.String()
	if !strings.HasPrefix(text, "ok: 12 steps") {
		t.Fatalf("unexpected summary:\n%s", text)
	}
	if !strings.Contains(text, "$1,000,000") {
		t.Fatalf("expected top prize, got:\n%s", text)
	}
}
