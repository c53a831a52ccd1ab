package app

import (
	"sync"
	"time"

	"millionaire-quiz/internal/domain"
	"millionaire-quiz/internal/money"

	"github.com/rs/zerolog/log"
)

// RevealDelay is the pause between showing an answer's outcome and moving on.
const RevealDelay = 1000 * time.Millisecond

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, fn func())

func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) { f(d, fn) }

// TimerScheduler schedules on the runtime timer.
var TimerScheduler Scheduler = SchedulerFunc(func(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
})

// Navigator moves the player to another screen.
type Navigator interface {
	Navigate(nav domain.Navigation)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(nav domain.Navigation)

func (f NavigatorFunc) Navigate(nav domain.Navigation) { f(nav) }

type phase int

const (
	phaseIdle phase = iota
	phaseRevealing
)

// Sequencer drives the answer flow on top of a Game: lock input, evaluate,
// reveal, wait RevealDelay, then advance or end the game. It owns the Game
// and serializes every access to it. Hooks (Navigator, change listener) run
// with the sequencer lock held and must not call back into it.
type Sequencer struct {
	mu        sync.Mutex
	game      *Game
	phase     phase
	reveal    reveal
	stepID    string
	route     domain.Route
	scheduler Scheduler
	navigator Navigator
	format    CurrencyFormatter
	onChange  func(domain.View)
}

// SequencerOption customizes a Sequencer.
type SequencerOption func(*Sequencer)

// WithScheduler replaces the timer used for the reveal delay.
func WithScheduler(s Scheduler) SequencerOption {
	return func(seq *Sequencer) { seq.scheduler = s }
}

// WithFormatter replaces the currency formatter used in views.
func WithFormatter(f CurrencyFormatter) SequencerOption {
	return func(seq *Sequencer) { seq.format = f }
}

// WithChangeListener registers fn to receive a fresh View after each change.
func WithChangeListener(fn func(domain.View)) SequencerOption {
	return func(seq *Sequencer) { seq.onChange = fn }
}

// NewSequencer wraps game. nav receives play and game-over navigations.
func NewSequencer(game *Game, nav Navigator, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		game:      game,
		stepID:    game.CurrentStep().ID,
		route:     domain.RoutePlay,
		scheduler: TimerScheduler,
		navigator: nav,
		format:    money.FormatCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locked reports whether a reveal sequence is in flight.
func (s *Sequencer) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseRevealing
}

// View returns the current render-ready state.
func (s *Sequencer) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Route returns the screen the player is on.
func (s *Sequencer) Route() domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// Start sends the player to the play screen.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseRevealing {
		return
	}
	s.route = domain.RoutePlay
	s.navigator.Navigate(s.navigationLocked(domain.RoutePlay))
	s.notifyLocked()
}

// Click routes an answer click by question mode: multi-select toggles,
// single-select submits.
func (s *Sequencer) Click(id domain.AnswerID) error {
	s.mu.Lock()
	multi := s.game.IsMultiSelect()
	s.mu.Unlock()
	if multi {
		return s.Toggle(id)
	}
	return s.Answer(id)
}

// Toggle flips id in the multi-select selection. Ignored while locked.
func (s *Sequencer) Toggle(id domain.AnswerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseRevealing {
		return nil
	}
	if s.route == domain.RouteGameOver {
		return domain.ErrGameOver
	}
	if !s.game.IsMultiSelect() {
		return domain.ErrSelectionMode
	}
	if err := s.game.ToggleAnswer(id); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// Answer submits a single-select pick. Ignored while locked.
func (s *Sequencer) Answer(id domain.AnswerID) error {
	s.mu.Lock()
	if s.phase == phaseRevealing {
		s.mu.Unlock()
		return nil
	}
	if s.route == domain.RouteGameOver {
		s.mu.Unlock()
		return domain.ErrGameOver
	}
	if s.game.IsMultiSelect() {
		s.mu.Unlock()
		return domain.ErrSelectionMode
	}
	result, err := s.game.SubmitAnswer(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.phase = phaseRevealing
	s.reveal = reveal{state: revealFor(result), answerID: id}
	s.notifyLocked()
	s.mu.Unlock()

	s.schedule(result)
	return nil
}

// Submit evaluates the multi-select selection. Ignored while locked.
func (s *Sequencer) Submit() error {
	s.mu.Lock()
	if s.phase == phaseRevealing {
		s.mu.Unlock()
		return nil
	}
	if s.route == domain.RouteGameOver {
		s.mu.Unlock()
		return domain.ErrGameOver
	}
	if !s.game.IsMultiSelect() {
		s.mu.Unlock()
		return domain.ErrSelectionMode
	}
	picked := s.game.SelectedAnswerIDs()
	if len(picked) == 0 {
		s.mu.Unlock()
		return domain.ErrEmptySelection
	}
	result, err := s.game.SubmitSelectedAnswers()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	revealed := make(map[domain.AnswerID]struct{}, len(picked))
	for _, id := range picked {
		revealed[id] = struct{}{}
	}
	s.phase = phaseRevealing
	s.reveal = reveal{state: revealFor(result), answerIDs: revealed}
	s.notifyLocked()
	s.mu.Unlock()

	s.schedule(result)
	return nil
}

// OpenAmounts shows the ladder modal. The menu is disabled while locked and
// does not exist on the game-over screen.
func (s *Sequencer) OpenAmounts() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseRevealing {
		return nil
	}
	if s.route == domain.RouteGameOver {
		return domain.ErrGameOver
	}
	s.game.OpenAmounts()
	s.notifyLocked()
	return nil
}

// CloseAmounts hides the ladder modal.
func (s *Sequencer) CloseAmounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.CloseAmounts()
	s.notifyLocked()
}

// schedule arms the single timer for the in-flight sequence. The timer
// callback is the only place the post-reveal transition happens.
func (s *Sequencer) schedule(result domain.Result) {
	s.scheduler.AfterFunc(RevealDelay, func() { s.complete(result) })
}

func (s *Sequencer) complete(result domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case result == domain.ResultWrong:
		s.finishLocked()
	case s.game.IsLastStep():
		if err := s.game.GoToNextStep(); err != nil {
			log.Error().Err(err).Msg("finishing last step")
		}
		s.finishLocked()
	default:
		if err := s.game.GoToNextStep(); err != nil {
			log.Error().Err(err).Msg("advancing step")
		}
		log.Debug().Int("step", s.game.StepIndex()).Msg("advanced")
	}
	s.syncStepLocked()
	s.notifyLocked()
}

// finishLocked captures the earned amount, resets the game and navigates to
// the game-over screen with the captured value.
func (s *Sequencer) finishLocked() {
	nav := s.navigationLocked(domain.RouteGameOver)
	s.game.Reset()
	s.clearLocked()
	s.route = domain.RouteGameOver
	s.navigator.Navigate(nav)
}

// syncStepLocked clears the ephemeral state when a new question is shown.
func (s *Sequencer) syncStepLocked() {
	if id := s.game.CurrentStep().ID; id != s.stepID {
		s.stepID = id
		s.clearLocked()
	}
}

func (s *Sequencer) clearLocked() {
	s.phase = phaseIdle
	s.reveal = reveal{}
}

func (s *Sequencer) navigationLocked(route domain.Route) domain.Navigation {
	cfg := s.game.Config()
	earned := s.game.EarnedAmount()
	return domain.Navigation{
		Route:           route,
		EarnedAmount:    earned,
		Currency:        cfg.Currency,
		FormattedAmount: s.format(earned, cfg.Currency),
	}
}

func (s *Sequencer) viewLocked() domain.View {
	return buildView(s.game, s.reveal, s.route, s.phase == phaseRevealing, s.format)
}

func (s *Sequencer) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.viewLocked())
	}
}

func revealFor(result domain.Result) domain.RevealState {
	if result == domain.ResultCorrect {
		return domain.RevealCorrect
	}
	return domain.RevealWrong
}
