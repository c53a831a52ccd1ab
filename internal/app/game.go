package app

import (
	"errors"
	"fmt"

	"millionaire-quiz/internal/domain"
)

// Game is the state machine for one play session. It is not safe for
// concurrent use; the owning Sequencer serializes access.
type Game struct {
	config       domain.GameConfig
	stepIndex    int
	status       domain.Status
	earnedAmount float64
	selected     map[domain.AnswerID]struct{}
	amountsOpen  bool

	// lastResult guards GoToNextStep; it is cleared whenever the step changes.
	lastResult domain.Result
}

// NewGame validates cfg and starts a game at the first step.
func NewGame(cfg domain.GameConfig) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{config: cfg}
	g.Reset()
	return g, nil
}

// Config returns the configuration the game was started with.
func (g *Game) Config() domain.GameConfig { return g.config }

// StepIndex returns the zero-based position on the ladder.
func (g *Game) StepIndex() int { return g.stepIndex }

// Status returns the lifecycle state.
func (g *Game) Status() domain.Status { return g.status }

// EarnedAmount returns the amount of the last cleared step.
func (g *Game) EarnedAmount() float64 { return g.earnedAmount }

// AmountsOpen reports whether the ladder modal is shown.
func (g *Game) AmountsOpen() bool { return g.amountsOpen }

// IsLastStep reports whether the current step is the top of the ladder.
func (g *Game) IsLastStep() bool { return g.stepIndex == len(g.config.Steps)-1 }

// CurrentStep returns the active step.
func (g *Game) CurrentStep() domain.Step {
	step, err := g.step(g.stepIndex)
	if err != nil {
		// stepIndex is only ever set within bounds.
		panic(err)
	}
	return step
}

// IsMultiSelect reports whether the current question needs several answers.
func (g *Game) IsMultiSelect() bool {
	return g.CurrentStep().Question.IsMultiSelect()
}

// IsSelected reports whether id is in the current selection.
func (g *Game) IsSelected(id domain.AnswerID) bool {
	_, ok := g.selected[id]
	return ok
}

// SelectedAnswerIDs returns the current selection in question order.
func (g *Game) SelectedAnswerIDs() []domain.AnswerID {
	ids := make([]domain.AnswerID, 0, len(g.selected))
	for _, a := range g.CurrentStep().Question.Answers {
		if g.IsSelected(a.ID) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ToggleAnswer adds id to the selection or removes it when present.
func (g *Game) ToggleAnswer(id domain.AnswerID) error {
	if err := g.requireInProgress(); err != nil {
		return err
	}
	if !g.CurrentStep().Question.HasAnswer(id) {
		return fmt.Errorf("%w: %q", domain.ErrAnswerNotFound, id)
	}
	if g.IsSelected(id) {
		delete(g.selected, id)
	} else {
		g.selected[id] = struct{}{}
	}
	return nil
}

// SubmitAnswer evaluates a single pick. A mismatch loses the game.
func (g *Game) SubmitAnswer(id domain.AnswerID) (domain.Result, error) {
	if err := g.requireInProgress(); err != nil {
		return "", err
	}
	if !g.CurrentStep().Question.HasAnswer(id) {
		return "", fmt.Errorf("%w: %q", domain.ErrAnswerNotFound, id)
	}
	return g.evaluate(map[domain.AnswerID]struct{}{id: {}}), nil
}

// SubmitSelectedAnswers evaluates the current selection.
func (g *Game) SubmitSelectedAnswers() (domain.Result, error) {
	if err := g.requireInProgress(); err != nil {
		return "", err
	}
	return g.evaluate(g.selected), nil
}

// GoToNextStep moves past a correctly answered step. On the last step the
// game is won instead. Either way the cleared step's amount is locked in.
func (g *Game) GoToNextStep() error {
	if err := g.requireInProgress(); err != nil {
		return err
	}
	if g.lastResult != domain.ResultCorrect {
		return domain.ErrNotAnsweredCorrectly
	}

	cleared := g.CurrentStep()
	g.earnedAmount = cleared.Amount
	g.selected = make(map[domain.AnswerID]struct{})
	g.lastResult = ""

	if g.IsLastStep() {
		g.status = domain.StatusWon
		return nil
	}
	g.stepIndex++
	return nil
}

// OpenAmounts shows the ladder modal.
func (g *Game) OpenAmounts() { g.amountsOpen = true }

// CloseAmounts hides the ladder modal.
func (g *Game) CloseAmounts() { g.amountsOpen = false }

// Reset returns to the start-of-session shape, keeping the configuration.
func (g *Game) Reset() {
	g.stepIndex = 0
	g.status = domain.StatusInProgress
	g.earnedAmount = 0
	g.selected = make(map[domain.AnswerID]struct{})
	g.amountsOpen = false
	g.lastResult = ""
}

func (g *Game) evaluate(picked map[domain.AnswerID]struct{}) domain.Result {
	if !sameAnswers(picked, g.CurrentStep().Question.CorrectAnswerIDs) {
		g.status = domain.StatusLost
		g.lastResult = domain.ResultWrong
		return domain.ResultWrong
	}
	g.lastResult = domain.ResultCorrect
	return domain.ResultCorrect
}

func (g *Game) requireInProgress() error {
	if g.status.Terminal() {
		return fmt.Errorf("%w: status %s", domain.ErrGameFinished, g.status)
	}
	return nil
}

func (g *Game) step(i int) (domain.Step, error) {
	if i < 0 || i >= len(g.config.Steps) {
		return domain.Step{}, fmt.Errorf("%w: %d of %d", domain.ErrStepOutOfRange, i, len(g.config.Steps))
	}
	return g.config.Steps[i], nil
}

// sameAnswers reports exact set equality: same cardinality and every picked
// id is correct.
func sameAnswers(picked map[domain.AnswerID]struct{}, correct []domain.AnswerID) bool {
	want := make(map[domain.AnswerID]struct{}, len(correct))
	for _, id := range correct {
		want[id] = struct{}{}
	}
	if len(picked) != len(want) {
		return false
	}
	for id := range picked {
		if _, ok := want[id]; !ok {
			return false
		}
	}
	return true
}

// IsInvariantViolation reports whether err signals a caller or config bug
// rather than a game outcome.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, domain.ErrAnswerNotFound) ||
		errors.Is(err, domain.ErrStepOutOfRange) ||
		errors.Is(err, domain.ErrNotAnsweredCorrectly)
}
