package wire

// Character flag bit positions. Bits 0-2 are reserved: zero on write,
// ignored on read.
const (
	flagAlive       = 1 << 7
	flagJoinBattles = 1 << 6
	flagMonster     = 1 << 5
	flagStarted     = 1 << 4
	flagReady       = 1 << 3
)

// Character declares or announces a player or monster. Both the client
// (declaring itself) and the server (announcing other characters) may
// legally send this kind; which fields are authoritative is a behavior
// concern, not a protocol one.
type Character struct {
	PlayerName  string
	Alive       bool
	JoinBattles bool
	Monster     bool
	Started     bool
	Ready       bool
	Attack      uint16
	Defense     uint16
	Regen       uint16
	Health      int16
	Gold        uint16
	RoomNumber  uint16
	Description string
}

func NewCharacter(c Character) (Character, error) {
	if err := validateFixedField(c.PlayerName); err != nil {
		return Character{}, err
	}
	if err := validateVarField(c.Description); err != nil {
		return Character{}, err
	}
	return c, nil
}

func (Character) Kind() Kind { return KindCharacter }

func (m Character) flags() byte {
	var f byte
	if m.Alive {
		f |= flagAlive
	}
	if m.JoinBattles {
		f |= flagJoinBattles
	}
	if m.Monster {
		f |= flagMonster
	}
	if m.Started {
		f |= flagStarted
	}
	if m.Ready {
		f |= flagReady
	}
	return f
}

func (m Character) Encode() []byte {
	buf := make([]byte, 0, 1+NameLen+1+2+2+2+2+2+2+2+len(m.Description))
	buf = append(buf, byte(KindCharacter))
	buf = putFixedString(buf, m.PlayerName, NameLen)
	buf = append(buf, m.flags())
	buf = putUint16(buf, m.Attack)
	buf = putUint16(buf, m.Defense)
	buf = putUint16(buf, m.Regen)
	buf = putInt16(buf, m.Health)
	buf = putUint16(buf, m.Gold)
	buf = putUint16(buf, m.RoomNumber)
	buf = putVarString(buf, m.Description)
	return buf
}

func sizeCharacter(payload []byte) (int, bool) {
	const prefix = NameLen + 1 + 2 + 2 + 2 + 2 + 2 + 2 // name, flags, attack, defense, regen, health, gold, room_number
	if len(payload) < prefix+2 {
		return 0, false
	}
	c := newCursor(payload)
	c.pos = prefix
	l, _ := c.uint16()
	return prefix + 2 + int(l), true
}

func decodeCharacterFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	name, err := c.fixedString(NameLen)
	if err != nil {
		return nil, 0, err
	}
	flags, err := c.byte()
	if err != nil {
		return nil, 0, err
	}
	attack, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	defense, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	regen, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	health, err := c.int16()
	if err != nil {
		return nil, 0, err
	}
	gold, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	roomNumber, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	description, err := c.varString()
	if err != nil {
		return nil, 0, err
	}
	return Character{
		PlayerName:  name,
		Alive:       flags&flagAlive != 0,
		JoinBattles: flags&flagJoinBattles != 0,
		Monster:     flags&flagMonster != 0,
		Started:     flags&flagStarted != 0,
		Ready:       flags&flagReady != 0,
		Attack:      attack,
		Defense:     defense,
		Regen:       regen,
		Health:      health,
		Gold:        gold,
		RoomNumber:  roomNumber,
		Description: description,
	}, c.pos, nil
}
