package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"lurkd/wire"
)

// recordingBehavior implements Behavior and records which callback fired.
type recordingBehavior struct {
	mu        sync.Mutex
	onMessage []wire.Message
	onLeave   int
	panicOn   wire.Kind
}

func (b *recordingBehavior) OnConnect(*EventContext)    {}
func (b *recordingBehavior) OnDisconnect(SessionID)     {}
func (b *recordingBehavior) OnStart(*EventContext, wire.Start)          {}
func (b *recordingBehavior) OnChangeRoom(*EventContext, wire.ChangeRoom) {}
func (b *recordingBehavior) OnFight(*EventContext, wire.Fight)          {}
func (b *recordingBehavior) OnPvPFight(*EventContext, wire.PvPFight)    {}
func (b *recordingBehavior) OnLoot(*EventContext, wire.Loot)            {}
func (b *recordingBehavior) OnCharacter(*EventContext, wire.Character) {}
func (b *recordingBehavior) Update(*WriteContext)                      {}

func (b *recordingBehavior) OnMessage(ctx *EventContext, m wire.Message) {
	if b.panicOn == wire.KindMessage {
		panic("boom")
	}
	b.mu.Lock()
	b.onMessage = append(b.onMessage, m)
	b.mu.Unlock()
}

func (b *recordingBehavior) OnLeave(ctx *EventContext) {
	b.mu.Lock()
	b.onLeave++
	b.mu.Unlock()
}

// recordingSender implements outboundSender, capturing every enqueue call.
type recordingSender struct {
	mu    sync.Mutex
	items []writeItem
}

func (s *recordingSender) enqueue(payload wire.Frame, target SessionID, sender Attribution) {
	s.mu.Lock()
	s.items = append(s.items, writeItem{payload: payload, target: target, sender: sender})
	s.mu.Unlock()
}

func newTestDispatcher(b Behavior, sender outboundSender) *dispatcher {
	return &dispatcher{
		behavior:   b,
		behaviorMu: &sync.Mutex{},
		sender:     sender,
		metrics:    &Metrics{},
	}
}

func TestDispatchUpdateDecodesAndDispatches(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	sess := newSession(serverSide, time.Minute, nil)

	behavior := &recordingBehavior{}
	sender := &recordingSender{}
	d := newTestDispatcher(behavior, sender)

	msg, _ := wire.NewMessage("bob", "alice", "hi")
	go func() { _ = wire.WriteFrame(clientSide, msg) }()

	if !d.update(sess) {
		t.Fatalf("expected update to report the session still running")
	}
	behavior.mu.Lock()
	defer behavior.mu.Unlock()
	if len(behavior.onMessage) != 1 || behavior.onMessage[0] != msg {
		t.Fatalf("expected OnMessage to fire once with the decoded message")
	}
}

func TestDispatchRejectsClientOnlyKindFromClient(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	sess := newSession(serverSide, time.Minute, nil)

	behavior := &recordingBehavior{}
	sender := &recordingSender{}
	d := newTestDispatcher(behavior, sender)

	// Room is a server-recipient-illegal kind (client may not send it).
	room, _ := wire.NewRoom(1, "lobby", "a room")
	go func() {
		_ = wire.WriteFrame(clientSide, room)
		// net.Pipe is unbuffered: read the best-effort Error reply so the
		// server's write does not block.
		_, _ = wire.ReadFrame(clientSide)
	}()

	d.update(sess)
	if sess.IsRunning() {
		t.Fatalf("expected a wrong-direction frame to flag the session closed")
	}
}

func TestDispatchPanicRecoveryClosesSessionAndBumpsMetric(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	sess := newSession(serverSide, time.Minute, nil)

	behavior := &recordingBehavior{panicOn: wire.KindMessage}
	sender := &recordingSender{}
	d := newTestDispatcher(behavior, sender)

	msg, _ := wire.NewMessage("bob", "alice", "hi")
	go func() { _ = wire.WriteFrame(clientSide, msg) }()

	d.update(sess)
	if sess.IsRunning() {
		t.Fatalf("expected a panicking callback to flag the session closed")
	}
	if d.metrics.protocolErrors.Load() != 1 {
		t.Fatalf("expected protocolErrors to be bumped by the recovered panic")
	}
}

func TestDispatchLeaveClosesSession(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	sess := newSession(serverSide, time.Minute, nil)

	behavior := &recordingBehavior{}
	sender := &recordingSender{}
	d := newTestDispatcher(behavior, sender)

	leave, _ := wire.NewLeave()
	go func() { _ = wire.WriteFrame(clientSide, leave) }()

	d.update(sess)
	behavior.mu.Lock()
	leaveCount := behavior.onLeave
	behavior.mu.Unlock()
	if leaveCount != 1 {
		t.Fatalf("expected OnLeave to fire exactly once")
	}
	if sess.IsRunning() {
		t.Fatalf("expected Leave to flag the session closed")
	}
}
