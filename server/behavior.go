package server

import "lurkd/wire"

// Behavior is the capability boundary between the engine and user-supplied
// game logic. The engine invokes at most one of these methods per decoded
// frame (none for a wrong-direction or rate-limited frame), plus Update
// once per server frame and OnConnect/OnDisconnect at session boundaries. Implementations MUST NOT block on I/O: every
// callback runs either under the engine's default behavior mutex or, in
// concurrent mode, directly on a worker goroutine, and a slow callback
// delays every other session's dispatch.
type Behavior interface {
	OnConnect(ctx *EventContext)
	OnDisconnect(id SessionID)
	OnMessage(ctx *EventContext, m wire.Message)
	OnChangeRoom(ctx *EventContext, m wire.ChangeRoom)
	OnFight(ctx *EventContext, m wire.Fight)
	OnPvPFight(ctx *EventContext, m wire.PvPFight)
	OnLoot(ctx *EventContext, m wire.Loot)
	OnStart(ctx *EventContext, m wire.Start)
	OnCharacter(ctx *EventContext, m wire.Character)
	OnLeave(ctx *EventContext)
	Update(wc *WriteContext)
}

// ConcurrentSafe is an optional marker interface. A Behavior that
// implements it asserts it performs its own synchronization; together with
// the WithConcurrentBehavior option (options.go) this lets Server skip
// wrapping it in the default serializing mutex.
type ConcurrentSafe interface {
	ConcurrentSafe()
}

// outboundSender is the capability both EventContext and WriteContext
// wrap: enqueue a frame addressed to a target session, attributed to
// whichever session (or the server itself) is producing it.
type outboundSender interface {
	enqueue(payload wire.Frame, target SessionID, sender Attribution)
}

// WriteContext is what Update receives: the ability to emit unsolicited
// traffic, with no session of origin.
type WriteContext struct {
	sender outboundSender
}

// Enqueue schedules payload for delivery to target, attributed to the
// server itself.
func (wc *WriteContext) Enqueue(payload wire.Frame, target SessionID) {
	wc.sender.enqueue(payload, target, Attribution{})
}

// EnqueueMany schedules payload for delivery to every id in targets.
func (wc *WriteContext) EnqueueMany(payload wire.Frame, targets []SessionID) {
	for _, id := range targets {
		wc.sender.enqueue(payload, id, Attribution{})
	}
}

// EventContext is passed to every callback except OnDisconnect and Update.
// It is bound to the session-id whose frame triggered the callback.
type EventContext struct {
	self   SessionID
	sender outboundSender
}

// SessionID returns the id of the session whose frame triggered this event.
func (ec *EventContext) SessionID() SessionID { return ec.self }

// Enqueue schedules payload for delivery to target, attributed to this
// event's originating session.
func (ec *EventContext) Enqueue(payload wire.Frame, target SessionID) {
	ec.sender.enqueue(payload, target, Attribution{fromClient: true, clientID: ec.self})
}

// EnqueueMany schedules payload for delivery to every id in targets.
func (ec *EventContext) EnqueueMany(payload wire.Frame, targets []SessionID) {
	for _, id := range targets {
		ec.Enqueue(payload, id)
	}
}

// EnqueueSelf schedules payload for delivery back to the originating
// session.
func (ec *EventContext) EnqueueSelf(payload wire.Frame) {
	ec.Enqueue(payload, ec.self)
}

// Attribution records who produced a write-queue item: either the server
// itself (the zero value) or a specific client session.
type Attribution struct {
	fromClient bool
	clientID   SessionID
}

// FromServer reports whether this item was produced by Update rather than
// by a client-triggered callback.
func (a Attribution) FromServer() bool { return !a.fromClient }

// ClientID returns the originating client id and true, or the zero id and
// false if this item came from the server.
func (a Attribution) ClientID() (SessionID, bool) {
	return a.clientID, a.fromClient
}
