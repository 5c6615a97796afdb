package wire

// ChangeRoom requests that the sender's character move to a new room.
type ChangeRoom struct {
	RoomNumber uint16
}

func NewChangeRoom(roomNumber uint16) (ChangeRoom, error) {
	return ChangeRoom{RoomNumber: roomNumber}, nil
}

func (ChangeRoom) Kind() Kind { return KindChangeRoom }

func (m ChangeRoom) Encode() []byte {
	buf := make([]byte, 0, 3)
	buf = append(buf, byte(KindChangeRoom))
	buf = putUint16(buf, m.RoomNumber)
	return buf
}

func decodeChangeRoomFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	n, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	return ChangeRoom{RoomNumber: n}, c.pos, nil
}

// Fight declares that the sender's character attacks whatever is present
// in its current room.
type Fight struct{}

func NewFight() (Fight, error) { return Fight{}, nil }

func (Fight) Kind() Kind { return KindFight }

func (Fight) Encode() []byte { return []byte{byte(KindFight)} }

func decodeFightFrame(_ []byte) (Frame, int, error) {
	return Fight{}, 0, nil
}

// PvPFight declares that the sender's character attacks a specific other
// player present in the same room.
type PvPFight struct {
	Target string
}

func NewPvPFight(target string) (PvPFight, error) {
	if err := validateFixedField(target); err != nil {
		return PvPFight{}, err
	}
	return PvPFight{Target: target}, nil
}

func (PvPFight) Kind() Kind { return KindPvPFight }

func (m PvPFight) Encode() []byte {
	buf := make([]byte, 0, 1+NameLen)
	buf = append(buf, byte(KindPvPFight))
	buf = putFixedString(buf, m.Target, NameLen)
	return buf
}

func decodePvPFightFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	target, err := c.fixedString(NameLen)
	if err != nil {
		return nil, 0, err
	}
	return PvPFight{Target: target}, c.pos, nil
}

// Loot declares that the sender's character attempts to loot a defeated
// target present in the same room.
type Loot struct {
	Target string
}

func NewLoot(target string) (Loot, error) {
	if err := validateFixedField(target); err != nil {
		return Loot{}, err
	}
	return Loot{Target: target}, nil
}

func (Loot) Kind() Kind { return KindLoot }

func (m Loot) Encode() []byte {
	buf := make([]byte, 0, 1+NameLen)
	buf = append(buf, byte(KindLoot))
	buf = putFixedString(buf, m.Target, NameLen)
	return buf
}

func decodeLootFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	target, err := c.fixedString(NameLen)
	if err != nil {
		return nil, 0, err
	}
	return Loot{Target: target}, c.pos, nil
}

// Start signals that the sender's client is ready for the game to begin.
type Start struct{}

func NewStart() (Start, error) { return Start{}, nil }

func (Start) Kind() Kind { return KindStart }

func (Start) Encode() []byte { return []byte{byte(KindStart)} }

func decodeStartFrame(_ []byte) (Frame, int, error) {
	return Start{}, 0, nil
}

// Leave signals that the sender is disconnecting voluntarily. The session
// layer treats receipt of a Leave as a request to close the connection
// after dispatching the callback.
type Leave struct{}

func NewLeave() (Leave, error) { return Leave{}, nil }

func (Leave) Kind() Kind { return KindLeave }

func (Leave) Encode() []byte { return []byte{byte(KindLeave)} }

func decodeLeaveFrame(_ []byte) (Frame, int, error) {
	return Leave{}, 0, nil
}
