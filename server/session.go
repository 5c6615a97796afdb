package server

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"lurkd/wire"
)

// Session is the server-side record of one live TCP connection: an id,
// the byte stream, a close signal, and an inactivity clock. It is
// destroyed only after its worker has observed the close signal, the
// registry has removed its entry, and OnDisconnect has fired exactly
// once — all three are orchestrated by the engine's reap phase, not by
// Session itself.
type Session struct {
	ID SessionID

	conn        net.Conn
	readTimeout time.Duration

	keepOpen  atomic.Bool
	closeOnce sync.Once
	closeCh   chan struct{}

	// writeMu guards conn.Write so registry.WriteTo and the session's own
	// best-effort error frame never interleave their bytes on the wire.
	writeMu sync.Mutex

	// activityMu guards lastActivity; touched from the worker goroutine on
	// every successful read and from the engine's drain phase on every
	// dispatched write, read from the engine's inactivity sweep.
	activityMu   sync.Mutex
	lastActivity time.Time

	limiter *rate.Limiter

	startedMu sync.Mutex
	started   bool
}

func newSession(conn net.Conn, readTimeout time.Duration, limiter *rate.Limiter) *Session {
	s := &Session{
		ID:          newSessionID(),
		conn:        conn,
		readTimeout: readTimeout,
		closeCh:     make(chan struct{}),
		limiter:     limiter,
	}
	s.keepOpen.Store(true)
	s.lastActivity = time.Now()
	return s
}

// IsRunning reports whether the session's close flag is still unset.
func (s *Session) IsRunning() bool {
	return s.keepOpen.Load()
}

// CloseSignal returns the channel a worker selects on to notice a close
// requested from outside its own goroutine (e.g. by the engine's
// inactivity sweep or by Stop).
func (s *Session) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// FlagClose atomically marks the session closed, wakes anyone blocked on
// CloseSignal, and forces the connection's read deadline into the past so
// a worker parked in pullNext unblocks immediately instead of waiting out
// the rest of its read-timeout window. Idempotent: a second call is a
// no-op.
func (s *Session) FlagClose() {
	s.keepOpen.Store(false)
	s.closeOnce.Do(func() {
		close(s.closeCh)
		_ = s.conn.SetReadDeadline(time.Now())
	})
}

// Shutdown flags the session closed and half-closes (or fully closes, if
// the transport doesn't support half-close) the underlying stream in both
// directions, unblocking any in-flight read.
func (s *Session) Shutdown() {
	s.FlagClose()
	if tc, ok := s.conn.(interface{ CloseRead() error }); ok {
		_ = tc.CloseRead()
	}
	if tc, ok := s.conn.(interface{ CloseWrite() error }); ok {
		_ = tc.CloseWrite()
	}
	_ = s.conn.Close()
}

// touch resets the inactivity clock. Called on every well-formed frame
// received and on every write the engine dispatches on this session's
// behalf.
func (s *Session) touch() {
	s.activityMu.Lock()
	s.lastActivity = time.Now()
	s.activityMu.Unlock()
}

// Inactivity reports how long it has been since the session last received
// a frame or had a write dispatched on its behalf.
func (s *Session) Inactivity() time.Duration {
	s.activityMu.Lock()
	last := s.lastActivity
	s.activityMu.Unlock()
	return time.Since(last)
}

// Started reports whether OnStart has already been observed for this
// session (set by the engine; exposed for behaviors that want to reject a
// second Start).
func (s *Session) Started() bool {
	s.startedMu.Lock()
	defer s.startedMu.Unlock()
	return s.started
}

func (s *Session) setStarted() {
	s.startedMu.Lock()
	s.started = true
	s.startedMu.Unlock()
}

// writeFrame serializes m onto the connection under the per-session write
// lock. Used both by the registry's drain-time writes and by the
// session's own best-effort error notice before a protocol-error close.
func (s *Session) writeFrame(m wire.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return wire.WriteFrame(s.conn, m)
}

// pullNext reads exactly one frame using the blocking frame codec,
// bounded by the session's read deadline so a worker can never block
// forever. It returns io.EOF on a clean peer disconnect and any other
// error for I/O or protocol failures.
func (s *Session) pullNext() (wire.Frame, error) {
	if s.readTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
	frame, err := wire.ReadFrame(s.conn)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// isTimeout reports whether err is a network read-deadline expiry, as
// opposed to a genuine I/O or protocol failure.
func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// isCleanEOF reports whether err represents the peer closing its write
// side with no partial frame in flight.
func isCleanEOF(err error) bool {
	return err == io.EOF
}
