package main

import (
	"sync"

	"lurkd/server"
	"lurkd/wire"
)

// lobby is a minimal Behavior that exercises every callback the engine
// dispatches, without implementing any actual combat or stat rules. It
// exists to drive the server package end to end, not to be a real game:
// every player is dropped into a single room and can chat, move between
// two placeholder rooms, and declare a character.
type lobby struct {
	mu        sync.Mutex
	names     map[server.SessionID]string
	roomOf    map[server.SessionID]uint16
	gameDesc  wire.Game
	rooms     map[uint16]wire.Room
}

func newLobby() *lobby {
	return &lobby{
		names:  make(map[server.SessionID]string),
		roomOf: make(map[server.SessionID]uint16),
		gameDesc: wire.Game{
			InitialPoints: 100,
			StatLimit:     80,
			Description:   "a small demo dungeon",
		},
		rooms: map[uint16]wire.Room{
			1: {RoomNumber: 1, RoomName: "lobby", Description: "a quiet waiting room"},
			2: {RoomNumber: 2, RoomName: "dungeon", Description: "a dark and drafty cavern"},
		},
	}
}

func (l *lobby) OnConnect(ctx *server.EventContext) {
	l.mu.Lock()
	l.roomOf[ctx.SessionID()] = 1
	l.mu.Unlock()

	ctx.EnqueueSelf(l.gameDesc)
	if room, ok := l.rooms[1]; ok {
		ctx.EnqueueSelf(room)
	}
}

func (l *lobby) OnDisconnect(id server.SessionID) {
	l.mu.Lock()
	delete(l.names, id)
	delete(l.roomOf, id)
	l.mu.Unlock()
}

func (l *lobby) OnMessage(ctx *server.EventContext, m wire.Message) {
	// A blank receiver name means "whoever is in my current room would
	// see this"; this demo has no room-membership directory, so it simply
	// echoes the message back to its sender.
	ctx.EnqueueSelf(m)
}

func (l *lobby) OnChangeRoom(ctx *server.EventContext, m wire.ChangeRoom) {
	room, ok := l.rooms[m.RoomNumber]
	if !ok {
		errMsg, err := wire.NewError(wire.ErrCodeBadRoom, "no such room")
		if err == nil {
			ctx.EnqueueSelf(errMsg)
		}
		return
	}
	l.mu.Lock()
	l.roomOf[ctx.SessionID()] = m.RoomNumber
	l.mu.Unlock()
	ctx.EnqueueSelf(room)
}

func (l *lobby) OnFight(ctx *server.EventContext, _ wire.Fight) {
	errMsg, err := wire.NewError(wire.ErrCodeNoFight, "nothing to fight here")
	if err == nil {
		ctx.EnqueueSelf(errMsg)
	}
}

func (l *lobby) OnPvPFight(ctx *server.EventContext, _ wire.PvPFight) {
	errMsg, err := wire.NewError(wire.ErrCodeNoPvP, "pvp is disabled in this demo")
	if err == nil {
		ctx.EnqueueSelf(errMsg)
	}
}

func (l *lobby) OnLoot(ctx *server.EventContext, _ wire.Loot) {
	errMsg, err := wire.NewError(wire.ErrCodeNoTarget, "nothing to loot")
	if err == nil {
		ctx.EnqueueSelf(errMsg)
	}
}

func (l *lobby) OnStart(ctx *server.EventContext, _ wire.Start) {
	accept, err := wire.NewAccept(byte(wire.KindStart))
	if err == nil {
		ctx.EnqueueSelf(accept)
	}
}

func (l *lobby) OnCharacter(ctx *server.EventContext, m wire.Character) {
	l.mu.Lock()
	l.names[ctx.SessionID()] = m.PlayerName
	l.mu.Unlock()

	accept, err := wire.NewAccept(byte(wire.KindCharacter))
	if err == nil {
		ctx.EnqueueSelf(accept)
	}
}

func (l *lobby) OnLeave(ctx *server.EventContext) {
	// The engine flags the session closed right after this returns; there
	// is nothing else for the demo to clean up beyond what OnDisconnect
	// already does.
}

func (l *lobby) Update(wc *server.WriteContext) {
	// No periodic broadcast in this demo; a real game would tick combat
	// rounds and regen here.
}
