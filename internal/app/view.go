package app

import (
	"millionaire-quiz/internal/domain"
)

// CurrencyFormatter renders an amount in a currency for display.
type CurrencyFormatter func(amount float64, currencyCode string) string

// AmountStateFor classifies a ladder row against the current step's amount.
func AmountStateFor(step domain.Step, currentAmount float64) domain.AmountState {
	switch {
	case step.Amount == currentAmount:
		return domain.AmountActive
	case step.Amount < currentAmount:
		return domain.AmountDisabled
	default:
		return domain.AmountInactive
	}
}

// AnswerLetter maps an answer position to A..Z, wrapping after Z.
func AnswerLetter(index int) string {
	if index < 0 {
		index = 0
	}
	return string(rune('A' + index%26))
}

// reveal is the ephemeral highlight of the latest submission.
type reveal struct {
	state domain.RevealState
	// single-select
	answerID domain.AnswerID
	// multi-select, snapshotted before the selection is cleared
	answerIDs map[domain.AnswerID]struct{}
}

func (r reveal) singleState(id domain.AnswerID) domain.AnswerState {
	if id != r.answerID {
		return domain.AnswerInactive
	}
	switch r.state {
	case domain.RevealCorrect:
		return domain.AnswerCorrect
	case domain.RevealWrong:
		return domain.AnswerWrong
	}
	return domain.AnswerInactive
}

func (r reveal) multiState(id domain.AnswerID, selected bool) domain.AnswerState {
	if _, ok := r.answerIDs[id]; ok {
		switch r.state {
		case domain.RevealCorrect:
			return domain.AnswerCorrect
		case domain.RevealWrong:
			return domain.AnswerWrong
		}
	}
	if selected {
		return domain.AnswerSelected
	}
	return domain.AnswerInactive
}

// buildView derives the render-ready state. Ladder rows run from the top
// amount down.
func buildView(g *Game, r reveal, route domain.Route, locked bool, format CurrencyFormatter) domain.View {
	cfg := g.Config()
	step := g.CurrentStep()
	multi := step.Question.IsMultiSelect()

	answers := make([]domain.AnswerView, 0, len(step.Question.Answers))
	for i, a := range step.Question.Answers {
		state := r.singleState(a.ID)
		if multi {
			state = r.multiState(a.ID, g.IsSelected(a.ID))
		}
		answers = append(answers, domain.AnswerView{
			ID:     a.ID,
			Letter: AnswerLetter(i),
			Text:   a.Text,
			State:  state,
		})
	}

	ladder := make([]domain.AmountView, 0, len(cfg.Steps))
	for i := len(cfg.Steps) - 1; i >= 0; i-- {
		s := cfg.Steps[i]
		ladder = append(ladder, domain.AmountView{
			StepID: s.ID,
			Amount: s.Amount,
			Label:  format(s.Amount, cfg.Currency),
			State:  AmountStateFor(s, step.Amount),
		})
	}

	selected := g.SelectedAnswerIDs()
	return domain.View{
		Route:        route,
		Status:       g.Status(),
		StepIndex:    g.StepIndex(),
		StepID:       step.ID,
		Question:     step.Question.Text,
		Answers:      answers,
		MultiSelect:  multi,
		Locked:       locked,
		CanSubmit:    multi && !locked && route != domain.RouteGameOver && len(selected) > 0,
		Reveal:       r.state,
		Selected:     selected,
		EarnedAmount: g.EarnedAmount(),
		Currency:     cfg.Currency,
		Ladder:       ladder,
		AmountsOpen:  g.AmountsOpen(),
	}
}
