package server

import (
	"sync"

	"lurkd/wire"
)

// Registry is the id→Session map every other component consults to find a
// live connection. Its map lock (mu) protects only the map structure, and
// a separate lock (pendingMu) guards the close-pending set; neither is held
// during any per-session I/O
// happens, so a slow write to one client can never block an accept or a
// lookup for another client. This mirrors the teacher's Room: a short-held
// map RWMutex guarding a map[id]*Client, with per-client state and locks
// living on the Client itself.
type Registry struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Session

	pendingMu sync.Mutex
	pending   map[SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[SessionID]*Session),
		pending:  make(map[SessionID]struct{}),
	}
}

// Insert adds a newly accepted session to the registry.
func (r *Registry) Insert(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Remove drops a session from the registry. It does not close anything;
// callers shut the session down first (see Shutdown).
func (r *Registry) Remove(id SessionID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Get returns the session for id, or nil if absent.
func (r *Registry) Get(id SessionID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// WithSession runs fn with the session for id, if present, returning
// ErrSessionNotFound otherwise. The map lock is held only long enough to
// look the session up; fn runs after it has been released.
func (r *Registry) WithSession(id SessionID, fn func(*Session)) error {
	s := r.Get(id)
	if s == nil {
		return ErrSessionNotFound
	}
	fn(s)
	return nil
}

// Len reports the number of sessions currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns a point-in-time copy of {id, inactivity, started} for
// every registered session, used by the admin surface. It copies data
// under the map's read lock and never touches a per-session lock while
// holding it.
type SessionSnapshot struct {
	ID           SessionID
	InactivityMS int64
	Started      bool
}

func (r *Registry) Snapshot() []SessionSnapshot {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]SessionSnapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionSnapshot{
			ID:           s.ID,
			InactivityMS: s.Inactivity().Milliseconds(),
			Started:      s.Started(),
		})
	}
	return out
}

// FlagClose marks id for shutdown: it flags the session closed (waking its
// worker) and records it in the close-pending set for the next reap pass.
func (r *Registry) FlagClose(id SessionID) {
	if s := r.Get(id); s != nil {
		s.FlagClose()
	}
	r.pendingMu.Lock()
	r.pending[id] = struct{}{}
	r.pendingMu.Unlock()
}

// CollectClosePending drains and returns the close-pending set. Safe to
// call repeatedly; an empty set is returned once everything flagged so
// far has been collected.
func (r *Registry) CollectClosePending() []SessionID {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if len(r.pending) == 0 {
		return nil
	}
	ids := make([]SessionID, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	r.pending = make(map[SessionID]struct{})
	return ids
}

// Shutdown flags id closed and half-closes its stream, if present.
func (r *Registry) Shutdown(id SessionID) {
	if s := r.Get(id); s != nil {
		s.Shutdown()
	}
}

// WriteTo looks up target, locks its stream, encodes and writes message,
// then unlocks — all without ever holding the registry's own map lock
// during the write. It touches the target's inactivity clock on success,
// since a dispatched write counts as activity on the target's behalf.
func (r *Registry) WriteTo(target SessionID, message wire.Frame) error {
	s := r.Get(target)
	if s == nil {
		return ErrSessionNotFound
	}
	if err := s.writeFrame(message); err != nil {
		return err
	}
	s.touch()
	return nil
}
