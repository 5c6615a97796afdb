package wire

// Room announces (or re-announces) a room's identity and description to a
// client, typically in reply to ChangeRoom.
type Room struct {
	RoomNumber  uint16
	RoomName    string
	Description string
}

func NewRoom(roomNumber uint16, roomName, description string) (Room, error) {
	if err := validateFixedField(roomName); err != nil {
		return Room{}, err
	}
	if err := validateVarField(description); err != nil {
		return Room{}, err
	}
	return Room{RoomNumber: roomNumber, RoomName: roomName, Description: description}, nil
}

func (Room) Kind() Kind { return KindRoom }

func (m Room) Encode() []byte {
	return encodeRoomLike(byte(KindRoom), m.RoomNumber, m.RoomName, m.Description)
}

func decodeRoomFrame(payload []byte) (Frame, int, error) {
	roomNumber, roomName, description, n, err := decodeRoomLike(payload)
	if err != nil {
		return nil, 0, err
	}
	return Room{RoomNumber: roomNumber, RoomName: roomName, Description: description}, n, nil
}

// Connection announces a room a client has just entered, sent by the
// server only (see the open question on Connection direction in the
// design notes).
type Connection struct {
	RoomNumber  uint16
	RoomName    string
	Description string
}

func NewConnection(roomNumber uint16, roomName, description string) (Connection, error) {
	if err := validateFixedField(roomName); err != nil {
		return Connection{}, err
	}
	if err := validateVarField(description); err != nil {
		return Connection{}, err
	}
	return Connection{RoomNumber: roomNumber, RoomName: roomName, Description: description}, nil
}

func (Connection) Kind() Kind { return KindConnection }

func (m Connection) Encode() []byte {
	return encodeRoomLike(byte(KindConnection), m.RoomNumber, m.RoomName, m.Description)
}

func decodeConnectionFrame(payload []byte) (Frame, int, error) {
	roomNumber, roomName, description, n, err := decodeRoomLike(payload)
	if err != nil {
		return nil, 0, err
	}
	return Connection{RoomNumber: roomNumber, RoomName: roomName, Description: description}, n, nil
}

// Room and Connection share an identical body layout: u16 room_number,
// fixed32 room_name, u16 desc_len, desc_len bytes description.
func encodeRoomLike(tag byte, roomNumber uint16, roomName, description string) []byte {
	buf := make([]byte, 0, 1+2+NameLen+2+len(description))
	buf = append(buf, tag)
	buf = putUint16(buf, roomNumber)
	buf = putFixedString(buf, roomName, NameLen)
	buf = putVarString(buf, description)
	return buf
}

func decodeRoomLike(payload []byte) (roomNumber uint16, roomName, description string, consumed int, err error) {
	c := newCursor(payload)
	roomNumber, err = c.uint16()
	if err != nil {
		return
	}
	roomName, err = c.fixedString(NameLen)
	if err != nil {
		return
	}
	description, err = c.varString()
	if err != nil {
		return
	}
	consumed = c.pos
	return
}

func sizeRoomLike(payload []byte) (int, bool) {
	if len(payload) < 2+NameLen+2 {
		return 0, false
	}
	c := newCursor(payload)
	_, _ = c.uint16()
	_, _ = c.fixedString(NameLen)
	l, _ := c.uint16()
	return 2 + NameLen + 2 + int(l), true
}
