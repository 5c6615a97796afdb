package server

import (
	"errors"
	"io"
	"log"
	"sync"

	"lurkd/wire"
)

// dispatcher bundles everything a session needs to turn one decoded frame
// into a callback invocation: the behavior object (plus its serializing
// mutex, nil in concurrent mode), the outbound sender the resulting
// EventContext will enqueue through, and the metrics sink.
type dispatcher struct {
	behavior   Behavior
	behaviorMu *sync.Mutex // nil when the behavior is ConcurrentSafe
	sender     outboundSender
	metrics    *Metrics
}

func (d *dispatcher) withBehavior(fn func(Behavior)) {
	if d.behaviorMu != nil {
		d.behaviorMu.Lock()
		defer d.behaviorMu.Unlock()
	}
	fn(d.behavior)
}

// update performs exactly one pullNext on s and, for a well-formed
// server-recipient frame, dispatches it to the matching callback. It
// returns s.IsRunning() as its result, matching the state-machine
// contract: a true result means the worker should loop again, a false
// result means it should exit without looking at the session further.
func (d *dispatcher) update(s *Session) bool {
	frame, err := s.pullNext()
	if err != nil {
		d.handlePullError(s, err)
		return s.IsRunning()
	}

	s.touch()
	d.metrics.framesDecoded.Add(1)

	if !wire.ServerRecipient(frame.Kind()) {
		d.metrics.protocolErrors.Add(1)
		d.sendBestEffortError(s, wire.ErrCodeOther, "wrong-direction frame")
		s.FlagClose()
		return s.IsRunning()
	}

	if s.limiter != nil && !s.limiter.Allow() {
		d.metrics.throttled.Add(1)
		return s.IsRunning()
	}

	ctx := &EventContext{self: s.ID, sender: d.sender}
	d.dispatchSafely(s, ctx, frame)
	return s.IsRunning()
}

// dispatchSafely recovers a panicking callback at the worker boundary so
// one broken behavior method never brings down the engine loop; it is
// treated the same as any other session-local protocol error.
func (d *dispatcher) dispatchSafely(s *Session, ctx *EventContext, frame wire.Frame) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[session %s] behavior callback panicked on %s: %v", s.ID, frame.Kind(), r)
			d.metrics.protocolErrors.Add(1)
			s.FlagClose()
		}
	}()
	d.dispatchFrame(s, ctx, frame)
}

func (d *dispatcher) handlePullError(s *Session, err error) {
	if isTimeout(err) {
		// A read-deadline expiry by itself is not inactivity — the engine's
		// separate inactivity sweep (driven by wall-clock elapsed, not by
		// this particular read attempt timing out) owns that decision.
		return
	}
	if isCleanEOF(err) {
		s.FlagClose()
		return
	}
	var unknown wire.ErrUnknownKind
	if errors.As(err, &unknown) || errors.Is(err, wire.ErrInvalidUTF8) || errors.Is(err, io.ErrUnexpectedEOF) {
		d.metrics.protocolErrors.Add(1)
		d.sendBestEffortError(s, wire.ErrCodeOther, "malformed")
	}
	s.FlagClose()
}

// sendBestEffortError attempts to notify the peer of a protocol failure
// before the session closes. Its own failure is ignored: the session is
// going away regardless.
func (d *dispatcher) sendBestEffortError(s *Session, code uint8, text string) {
	errMsg, err := wire.NewError(code, text)
	if err != nil {
		return
	}
	_ = s.writeFrame(errMsg)
}

func (d *dispatcher) dispatchFrame(s *Session, ctx *EventContext, frame wire.Frame) {
	switch m := frame.(type) {
	case wire.Message:
		d.withBehavior(func(b Behavior) { b.OnMessage(ctx, m) })
	case wire.ChangeRoom:
		d.withBehavior(func(b Behavior) { b.OnChangeRoom(ctx, m) })
	case wire.Fight:
		d.withBehavior(func(b Behavior) { b.OnFight(ctx, m) })
	case wire.PvPFight:
		d.withBehavior(func(b Behavior) { b.OnPvPFight(ctx, m) })
	case wire.Loot:
		d.withBehavior(func(b Behavior) { b.OnLoot(ctx, m) })
	case wire.Start:
		s.setStarted()
		d.withBehavior(func(b Behavior) { b.OnStart(ctx, m) })
	case wire.Character:
		d.withBehavior(func(b Behavior) { b.OnCharacter(ctx, m) })
	case wire.Leave:
		d.withBehavior(func(b Behavior) { b.OnLeave(ctx) })
		s.FlagClose()
	default:
		// Unreachable: ServerRecipient already filtered to these kinds.
	}
}
