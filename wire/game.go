package wire

// Game announces the character-creation parameters in effect for this
// server: how many stat points a new character starts with and the cap on
// any single stat.
type Game struct {
	InitialPoints uint16
	StatLimit     uint16
	Description   string
}

func NewGame(initialPoints, statLimit uint16, description string) (Game, error) {
	if err := validateVarField(description); err != nil {
		return Game{}, err
	}
	return Game{InitialPoints: initialPoints, StatLimit: statLimit, Description: description}, nil
}

func (Game) Kind() Kind { return KindGame }

func (m Game) Encode() []byte {
	buf := make([]byte, 0, 1+2+2+2+len(m.Description))
	buf = append(buf, byte(KindGame))
	buf = putUint16(buf, m.InitialPoints)
	buf = putUint16(buf, m.StatLimit)
	buf = putVarString(buf, m.Description)
	return buf
}

func sizeGame(payload []byte) (int, bool) {
	if len(payload) < 6 {
		return 0, false
	}
	c := newCursor(payload)
	c.pos = 4
	l, _ := c.uint16()
	return 6 + int(l), true
}

func decodeGameFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	initialPoints, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	statLimit, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	description, err := c.varString()
	if err != nil {
		return nil, 0, err
	}
	return Game{InitialPoints: initialPoints, StatLimit: statLimit, Description: description}, c.pos, nil
}
