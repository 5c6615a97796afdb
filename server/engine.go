package server

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"lurkd/wire"
)

// Server is the LURK engine: it accepts TCP connections, runs one worker
// per session, drains the shared write queue, reaps sessions that have
// flagged themselves closed, and sweeps for inactivity — all paced by one
// outer loop, matching the teacher's single-goroutine-owns-the-lifecycle
// server shape generalized from rooms-of-clients to a flat session set.
type Server struct {
	addr   string
	cfg    config
	ln     net.Listener
	pool   *pool
	queue  *writeQueue
	reg    *Registry
	metrics *Metrics

	behaviorMu *sync.Mutex

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	adminServer adminHandle
}

// adminHandle is satisfied by the admin package's server wrapper; kept as
// an interface here so engine.go never imports net/http directly.
type adminHandle interface {
	Start() error
	Stop(ctx context.Context) error
}

// Create builds a Server listening on addr. At least one Option (usually
// WithBehavior) is required; Create returns an error if no Behavior was
// supplied.
func Create(addr string, opts ...Option) (*Server, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.behavior == nil {
		return nil, errors.New("server: WithBehavior is required")
	}

	s := &Server{
		addr:    addr,
		cfg:     cfg,
		pool:    newPool(cfg.maxConnections),
		queue:   newWriteQueue(),
		reg:     NewRegistry(),
		metrics: &Metrics{},
		stopCh:  make(chan struct{}),
	}
	if _, safe := cfg.behavior.(ConcurrentSafe); !cfg.concurrent || !safe {
		s.behaviorMu = &sync.Mutex{}
	}
	return s, nil
}

// Metrics returns a point-in-time snapshot of the engine's counters.
func (s *Server) Metrics() Snapshot {
	depth, high := s.queue.stats()
	return s.metrics.snapshot(s.reg.Len(), depth, high)
}

// Registry exposes the session registry read-only, for the admin surface.
func (s *Server) Registry() *Registry { return s.reg }

// AdminAddr returns the configured admin listen address, or "" if the
// admin surface was never enabled via WithAdminAddr.
func (s *Server) AdminAddr() string { return s.cfg.adminAddr }

// IsRunning reports whether the engine loop is currently active.
func (s *Server) IsRunning() bool { return s.running.Load() }

// SetAdmin attaches the admin HTTP surface so shutdown stops it alongside
// the rest of the engine. Called by cmd/lurkd-demo after constructing the
// admin server around this Server.
func (s *Server) SetAdmin(h adminHandle) { s.adminServer = h }

// enqueue implements outboundSender for both EventContext and
// WriteContext: it appends payload to the shared write queue.
func (s *Server) enqueue(payload wire.Frame, target SessionID, sender Attribution) {
	s.queue.enqueue(writeItem{payload: payload, target: target, sender: sender})
}

// Start opens the listener and runs the engine loop until ctx is
// cancelled or Stop is called. It blocks for the lifetime of the server.
// A caller-cancelled ctx yields a nil return; an explicit call to Stop
// yields ErrServerClosed, mirroring how the caller distinguishes "I asked
// for this" from "the surrounding context ended."
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	acceptErrCh := make(chan error, 1)
	go s.acceptLoop(ctx, acceptErrCh)
	go runMetricsLogger(ctx, s, 30*time.Second)

	ticker := time.NewTicker(s.cfg.frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-s.stopCh:
			s.shutdown()
			return ErrServerClosed
		case err := <-acceptErrCh:
			s.shutdown()
			return err
		case <-ticker.C:
			s.withBehavior(func(b Behavior) {
				b.Update(&WriteContext{sender: s})
			})
			s.drain()
			s.reap()
			s.sweepInactive()
		}
	}
}

// Stop signals the engine loop to begin shutdown and returns immediately;
// Start's caller observes the actual return when Start unblocks.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Server) withBehavior(fn func(Behavior)) {
	if s.behaviorMu != nil {
		s.behaviorMu.Lock()
		defer s.behaviorMu.Unlock()
	}
	fn(s.cfg.behavior)
}

// acceptLoop accepts connections until ctx is done, handing each to
// acceptOne. While every worker slot is taken it stops accepting, so
// further connections wait in the listener's backlog until a worker exits.
// A listener error ends the loop and reports upstream; a
// listener Close (from shutdown) is the expected way this happens during
// normal termination, so that specific error is swallowed.
func (s *Server) acceptLoop(ctx context.Context, errCh chan<- error) {
	for {
		for s.pool.len() >= s.pool.cap() {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-time.After(s.cfg.frameTime):
			}
		}
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			default:
			}
			errCh <- err
			return
		}
		if err := s.acceptOne(conn); err != nil {
			log.Printf("server: %v", err)
		}
	}
}

// acceptOne hands conn to a new session, or rejects it and returns
// ErrPoolFull if the worker pool has no free slot. A rejection is never
// fatal to the accept loop; the caller just logs it and keeps accepting.
func (s *Server) acceptOne(conn net.Conn) error {
	if !s.pool.tryAcquire() {
		s.metrics.rejects.Add(1)
		_ = conn.Close()
		return ErrPoolFull
	}

	limiter := s.cfg.newLimiter()
	sess := newSession(conn, s.cfg.readTimeout, limiter)
	s.reg.Insert(sess)
	s.metrics.accepts.Add(1)

	d := &dispatcher{
		behavior:   s.cfg.behavior,
		behaviorMu: s.behaviorMu,
		sender:     s,
		metrics:    s.metrics,
	}

	s.withBehavior(func(b Behavior) {
		b.OnConnect(&EventContext{self: sess.ID, sender: s})
	})

	s.pool.spawn(func() {
	workerLoop:
		for {
			select {
			case <-sess.CloseSignal():
				break workerLoop
			default:
			}
			if !d.update(sess) {
				break workerLoop
			}
		}
		s.reg.FlagClose(sess.ID)
	})
	return nil
}

// drain pops every item currently queued and writes each to its target,
// skipping targets that have since disappeared and flagging for close any
// target whose write fails. It runs once per engine
// tick so a burst of Update-driven broadcasts doesn't starve reap/sweep.
func (s *Server) drain() {
	for {
		item, ok := s.queue.pop()
		if !ok {
			return
		}
		if err := s.reg.WriteTo(item.target, item.payload); err != nil && err != ErrSessionNotFound {
			s.reg.FlagClose(item.target)
		}
	}
}

// reap finalizes every session that has been flagged closed since the
// last pass: it shuts the connection down, removes it from the registry,
// and fires OnDisconnect exactly once.
func (s *Server) reap() {
	for _, id := range s.reg.CollectClosePending() {
		sess := s.reg.Get(id)
		if sess == nil {
			continue
		}
		sess.Shutdown()
		s.reg.Remove(id)
		s.metrics.disconnects.Add(1)
		s.withBehavior(func(b Behavior) {
			b.OnDisconnect(id)
		})
	}
}

// sweepInactive treats any session whose Inactivity exceeds the configured
// timeout exactly as if it had sent a Leave: OnLeave fires once, then the
// session is flagged closed for the next reap pass to finalize. A session
// already flagged is a cheap no-op for FlagClose.
func (s *Server) sweepInactive() {
	if s.cfg.readTimeout <= 0 {
		return
	}
	for _, snap := range s.reg.Snapshot() {
		if time.Duration(snap.InactivityMS)*time.Millisecond < s.cfg.readTimeout {
			continue
		}
		sess := s.reg.Get(snap.ID)
		if sess == nil || !sess.IsRunning() {
			continue // already flagged by an earlier sweep; OnLeave already fired
		}
		s.withBehavior(func(b Behavior) {
			b.OnLeave(&EventContext{self: snap.ID, sender: s})
		})
		s.reg.FlagClose(snap.ID)
	}
}

// shutdown stops accepting new connections, drains the write queue once
// so pending writes reach sessions that are still open, closes every live
// session's connection so a worker blocked in a read unblocks immediately,
// waits for every worker to notice and exit, and does a final reap pass
// so OnDisconnect still fires for everyone.
func (s *Server) shutdown() {
	s.running.Store(false)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.drain()
	for _, snap := range s.reg.Snapshot() {
		if sess := s.reg.Get(snap.ID); sess != nil {
			sess.Shutdown()
		}
	}
	s.pool.wait()
	s.reap()
	if s.adminServer != nil {
		_ = s.adminServer.Stop(context.Background())
	}
	log.Printf("server: stopped, served %d sessions total", s.metrics.accepts.Load())
}
