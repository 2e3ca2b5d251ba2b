package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
)

// Store holds sessions in memory and expires them after an idle TTL.
// Sessions with an operation in flight are never expired.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new idle session.
func (st *Store) Create() *Session {
	sess := newSession(uuid.NewString(), st.now())
	st.mu.Lock()
	st.sessions[sess.id] = sess
	st.mu.Unlock()
	return sess
}

// Get returns a live session or NotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session not found")
	}
	if st.expired(sess) {
		delete(st.sessions, id)
		return nil, apperr.NotFound("session not found")
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is NotFound.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return apperr.NotFound("session not found")
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *Store) expired(sess *Session) bool {
	if st.ttl <= 0 || sess.busy() {
		return false
	}
	return st.now().Sub(sess.lastActive()) > st.ttl
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	log := zap.L().With(zap.String("component", "session.janitor"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.Debug("session: expired sessions removed", zap.Int("removed", n))
			}
		}
	}
}
