package redis

import (
	"context"
	"sync"
	"time"

	"millionaire-quiz/internal/app"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions and their timers live in process; Redis holds a liveness record
// per session so operators can list active games across instances. Each
// lookup slides the marker's expiry:
//
//	HSET game:session:{id} configId {configID} createdAt {unix} EX {ttl}
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	ctx := context.Background()
	key := s.key(session.ID())
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "configId", session.ConfigID(), "createdAt", session.CreatedAt().Unix())
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("session", session.ID()).Msg("mark session live")
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		if err := s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("refresh session marker")
		}
	}
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.client.Del(context.Background(), s.key(sessionID)).Err(); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("clear session marker")
	}
}

func (s *SessionStore) Sessions() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

func (s *SessionStore) key(sessionID string) string {
	return "game:session:" + sessionID
}
