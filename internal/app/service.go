package app

import (
	"context"
	"fmt"
	"time"

	"millionaire-quiz/internal/domain"
	"millionaire-quiz/internal/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	// Sessions lists the sessions held by this process.
	Sessions() []*Session
}

// ConfigRepository loads game configurations (from cache/backing store).
type ConfigRepository interface {
	GetConfig(ctx context.Context, configID string) (domain.GameConfig, error)
}

// GameService contains the game use cases.
type GameService struct {
	sessions SessionRepository
	configs  ConfigRepository
	opts     []SequencerOption
	newID    func() string
	now      func() time.Time
}

// NewGameService wires the repositories. opts apply to every session's
// Sequencer.
func NewGameService(store SessionRepository, configs ConfigRepository, opts ...SequencerOption) *GameService {
	return &GameService{
		sessions: store,
		configs:  configs,
		opts:     opts,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Start loads configID and opens a new session at the first step.
func (s *GameService) Start(ctx context.Context, configID string) (*Session, error) {
	cfg, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	session, err := newSessionWithClock(s.newID(), configID, cfg, s.now, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", configID, err)
	}
	s.sessions.Put(session)
	session.Sequencer().Start()
	log.Info().Str("session", session.ID()).Str("config", configID).Msg("session started")
	return session, nil
}

// Session looks up an active session and marks it as used.
func (s *GameService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.touch(s.now())
	return session, nil
}

// Apply feeds a player action into the session and returns the resulting view.
// Inputs that arrive while a reveal is in flight are ignored.
func (s *GameService) Apply(_ context.Context, sessionID string, action domain.Action) (domain.View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	seq := session.Sequencer()

	switch action.Type {
	case domain.ActionStart, domain.ActionTryAgain:
		seq.Start()
	case domain.ActionAnswer:
		err = seq.Click(action.AnswerID)
	case domain.ActionToggle:
		err = seq.Toggle(action.AnswerID)
	case domain.ActionSubmit:
		err = seq.Submit()
	case domain.ActionOpenAmounts:
		err = seq.OpenAmounts()
	case domain.ActionCloseAmounts:
		seq.CloseAmounts()
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Type)
	}
	if err != nil {
		return domain.View{}, err
	}
	return seq.View(), nil
}

// View returns the current view of a session.
func (s *GameService) View(_ context.Context, sessionID string) (domain.View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.Sequencer().View(), nil
}

// Subscribe returns a channel that receives state and navigation events.
// The first event is the current state. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Event, func(), error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End drops a session and closes its subscriptions.
func (s *GameService) End(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.closeSubscribers()
	s.sessions.Delete(sessionID)
	log.Info().Str("session", sessionID).Msg("session ended")
}

// EvictIdle ends every session that has not been used for idle and has no
// subscribers. It returns how many sessions were ended.
func (s *GameService) EvictIdle(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	evicted := 0
	for _, session := range s.sessions.Sessions() {
		if session.hasSubscribers() || session.LastActive().After(cutoff) {
			continue
		}
		s.End(ctx, session.ID())
		evicted++
	}
	if evicted > 0 {
		log.Info().Int("sessions", evicted).Dur("idle", idle).Msg("evicted idle sessions")
	}
	return evicted
}

// RunEvictor calls EvictIdle every interval until ctx is done.
func (s *GameService) RunEvictor(ctx context.Context, idle, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ctx, idle)
		}
	}
}

// Ladder returns the formatted ladder of a configuration, top amount first,
// as seen before the first answer.
func (s *GameService) Ladder(ctx context.Context, configID string) ([]domain.AmountView, error) {
	cfg, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	if len(cfg.Steps) == 0 {
		return nil, fmt.Errorf("%w: ladder has no steps", domain.ErrInvalidConfig)
	}
	current := cfg.Steps[0].Amount
	rows := make([]domain.AmountView, 0, len(cfg.Steps))
	for i := len(cfg.Steps) - 1; i >= 0; i-- {
		step := cfg.Steps[i]
		rows = append(rows, domain.AmountView{
			StepID: step.ID,
			Amount: step.Amount,
			Label:  money.FormatCurrency(step.Amount, cfg.Currency),
			State:  AmountStateFor(step, current),
		})
	}
	return rows, nil
}
