package app

import (
	"sync"
	"time"

	"millionaire-quiz/internal/domain"
)

// Session is the handle for one player's game. It owns the Sequencer and
// fans out its state changes and navigations to subscribers.
type Session struct {
	id        string
	configID  string
	createdAt time.Time
	seq       *Sequencer

	activeMu   sync.Mutex
	lastActive time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

// NewSession builds a session around a fresh game for cfg.
func NewSession(id, configID string, cfg domain.GameConfig, opts ...SequencerOption) (*Session, error) {
	return newSessionWithClock(id, configID, cfg, time.Now, opts...)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id, configID string, cfg domain.GameConfig, now func() time.Time, opts ...SequencerOption) (*Session, error) {
	game, err := NewGame(cfg)
	if err != nil {
		return nil, err
	}
	created := now()
	s := &Session{
		id:          id,
		configID:    configID,
		createdAt:   created,
		lastActive:  created,
		subscribers: make(map[chan domain.Event]struct{}),
	}
	opts = append(opts, WithChangeListener(s.stateChanged))
	s.seq = NewSequencer(game, s, opts...)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ConfigID returns the id of the configuration being played.
func (s *Session) ConfigID() string { return s.configID }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive returns when the session was last looked up.
func (s *Session) LastActive() time.Time {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.lastActive
}

func (s *Session) touch(t time.Time) {
	s.activeMu.Lock()
	if t.After(s.lastActive) {
		s.lastActive = t
	}
	s.activeMu.Unlock()
}

func (s *Session) hasSubscribers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) > 0
}

// Sequencer exposes the session's answer flow.
func (s *Session) Sequencer() *Sequencer { return s.seq }

// Navigate implements Navigator by broadcasting a navigate event.
func (s *Session) Navigate(nav domain.Navigation) {
	s.broadcast(domain.Event{Type: domain.EventNavigate, Navigation: &nav})
}

func (s *Session) stateChanged(v domain.View) {
	s.broadcast(domain.Event{Type: domain.EventState, View: &v})
}

func (s *Session) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	// The view is read outside s.mu: the sequencer calls back into the
	// session with its own lock held.
	initial := s.seq.View()
	s.mu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		deliverLocked(ch, domain.Event{Type: domain.EventState, View: &initial})
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcast(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		deliverLocked(ch, ev)
	}
}

// deliverLocked never blocks: a full channel drops its oldest event.
func deliverLocked(ch chan domain.Event, ev domain.Event) {
	select {
	case ch <- ev:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
}
