package wire

import "fmt"

// Kind is the single-byte type tag that opens every frame.
type Kind uint8

// The closed set of thirteen message kinds.
const (
	KindMessage    Kind = 1
	KindChangeRoom Kind = 2
	KindFight      Kind = 3
	KindPvPFight   Kind = 4
	KindLoot       Kind = 5
	KindStart      Kind = 6
	KindError      Kind = 7
	KindAccept     Kind = 8
	KindRoom       Kind = 9
	KindCharacter  Kind = 10
	KindGame       Kind = 11
	KindLeave      Kind = 12
	KindConnection Kind = 13
)

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var kindNames = map[Kind]string{
	KindMessage:    "Message",
	KindChangeRoom: "ChangeRoom",
	KindFight:      "Fight",
	KindPvPFight:   "PvPFight",
	KindLoot:       "Loot",
	KindStart:      "Start",
	KindError:      "Error",
	KindAccept:     "Accept",
	KindRoom:       "Room",
	KindCharacter:  "Character",
	KindGame:       "Game",
	KindLeave:      "Leave",
	KindConnection: "Connection",
}

// Frame is satisfied by every message kind. Encode produces the complete
// on-wire frame including the leading type byte.
type Frame interface {
	Kind() Kind
	Encode() []byte
}

// ErrUnknownKind is returned when a type byte does not name one of the
// thirteen kinds. It is always fatal to the session that produced it.
type ErrUnknownKind struct {
	Byte byte
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("wire: unknown message kind %d", e.Byte)
}

// ServerRecipient reports whether frames of this kind may legally be sent
// by a client to the server.
func ServerRecipient(k Kind) bool {
	switch k {
	case KindMessage, KindChangeRoom, KindFight, KindPvPFight, KindLoot, KindStart, KindCharacter, KindLeave:
		return true
	default:
		return false
	}
}

// ClientRecipient reports whether frames of this kind may legally be sent
// by the server to a client.
func ClientRecipient(k Kind) bool {
	switch k {
	case KindMessage, KindError, KindAccept, KindRoom, KindCharacter, KindGame, KindConnection:
		return true
	default:
		return false
	}
}

// decodeFunc decodes a kind's payload (the bytes after the type byte) and
// reports how many of those bytes it consumed.
type decodeFunc func(payload []byte) (Frame, int, error)

// sizeFunc inspects as much of a kind's payload as is currently available
// and reports the total payload length once it is knowable. known is false
// when not enough of the payload has arrived yet to compute the length
// (e.g. a variable-length kind whose length prefix itself hasn't arrived).
type sizeFunc func(payload []byte) (total int, known bool)

var decoders = map[Kind]decodeFunc{
	KindMessage:    decodeMessageFrame,
	KindChangeRoom: decodeChangeRoomFrame,
	KindFight:      decodeFightFrame,
	KindPvPFight:   decodePvPFightFrame,
	KindLoot:       decodeLootFrame,
	KindStart:      decodeStartFrame,
	KindError:      decodeErrorFrame,
	KindAccept:     decodeAcceptFrame,
	KindRoom:       decodeRoomFrame,
	KindCharacter:  decodeCharacterFrame,
	KindGame:       decodeGameFrame,
	KindLeave:      decodeLeaveFrame,
	KindConnection: decodeConnectionFrame,
}

var sizers = map[Kind]sizeFunc{
	KindMessage:    sizeMessage,
	KindChangeRoom: sizeFixed(2),
	KindFight:      sizeFixed(0),
	KindPvPFight:   sizeFixed(NameLen),
	KindLoot:       sizeFixed(NameLen),
	KindStart:      sizeFixed(0),
	KindError:      sizeError,
	KindAccept:     sizeFixed(1),
	KindRoom:       sizeRoomLike,
	KindCharacter:  sizeCharacter,
	KindGame:       sizeGame,
	KindLeave:      sizeFixed(0),
	KindConnection: sizeRoomLike,
}

// sizeFixed builds a sizeFunc for kinds whose payload length never depends
// on their contents.
func sizeFixed(n int) sizeFunc {
	return func(_ []byte) (int, bool) { return n, true }
}
