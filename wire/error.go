package wire

// Named error codes. Values outside this set are legal and are
// transmitted verbatim — the protocol never rejects an unrecognized code.
const (
	ErrCodeOther        uint8 = 0
	ErrCodeBadRoom      uint8 = 1
	ErrCodePlayerExists uint8 = 2
	ErrCodeBadMonster   uint8 = 3
	ErrCodeStatError    uint8 = 4
	ErrCodeNotReady     uint8 = 5
	ErrCodeNoTarget     uint8 = 6
	ErrCodeNoFight      uint8 = 7
	ErrCodeNoPvP        uint8 = 8
)

// ErrorMsg reports a protocol-level failure to a client. Named ErrorMsg
// (rather than Error) so it does not collide with the error interface;
// Kind() still reports KindError.
type ErrorMsg struct {
	Code uint8
	Text string
}

func NewError(code uint8, text string) (ErrorMsg, error) {
	if err := validateVarField(text); err != nil {
		return ErrorMsg{}, err
	}
	return ErrorMsg{Code: code, Text: text}, nil
}

func (ErrorMsg) Kind() Kind { return KindError }

func (m ErrorMsg) Encode() []byte {
	buf := make([]byte, 0, 1+1+2+len(m.Text))
	buf = append(buf, byte(KindError))
	buf = append(buf, m.Code)
	buf = putVarString(buf, m.Text)
	return buf
}

func sizeError(payload []byte) (int, bool) {
	if len(payload) < 3 {
		return 0, false
	}
	c := newCursor(payload)
	_, _ = c.byte()
	l, _ := c.uint16()
	return 3 + int(l), true
}

func decodeErrorFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	code, err := c.byte()
	if err != nil {
		return nil, 0, err
	}
	text, err := c.varString()
	if err != nil {
		return nil, 0, err
	}
	return ErrorMsg{Code: code, Text: text}, c.pos, nil
}

// Accept confirms that a previously requested action has been carried out.
// ActionType echoes the type byte of the action being confirmed (e.g. the
// kind tag of ChangeRoom or Fight).
type Accept struct {
	ActionType uint8
}

func NewAccept(actionType uint8) (Accept, error) {
	return Accept{ActionType: actionType}, nil
}

func (Accept) Kind() Kind { return KindAccept }

func (m Accept) Encode() []byte {
	return []byte{byte(KindAccept), m.ActionType}
}

func decodeAcceptFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	action, err := c.byte()
	if err != nil {
		return nil, 0, err
	}
	return Accept{ActionType: action}, c.pos, nil
}
