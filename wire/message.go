package wire

// Message carries free-form chat or narration text between a sender and a
// single named receiver. It and Character are the two kinds sendable in
// both directions.
type Message struct {
	Receiver string
	Sender   string
	Body     string
}

// NewMessage validates field lengths and constructs a Message.
func NewMessage(receiver, sender, body string) (Message, error) {
	if err := validateFixedField(receiver); err != nil {
		return Message{}, err
	}
	if err := validateFixedField(sender); err != nil {
		return Message{}, err
	}
	if err := validateVarField(body); err != nil {
		return Message{}, err
	}
	return Message{Receiver: receiver, Sender: sender, Body: body}, nil
}

// Kind implements Frame.
func (Message) Kind() Kind { return KindMessage }

// Encode implements Frame. The body length is declared before the two
// name fields, and the body follows both names — this field order is
// unusual among the variable kinds and must be preserved bit-exactly.
func (m Message) Encode() []byte {
	buf := make([]byte, 0, 1+2+NameLen+NameLen+len(m.Body))
	buf = append(buf, byte(KindMessage))
	buf = putUint16(buf, uint16(len(m.Body)))
	buf = putFixedString(buf, m.Receiver, NameLen)
	buf = putFixedString(buf, m.Sender, NameLen)
	buf = append(buf, m.Body...)
	return buf
}

func sizeMessage(payload []byte) (int, bool) {
	if len(payload) < 2 {
		return 0, false
	}
	l, _ := newCursor(payload).uint16()
	return 2 + NameLen + NameLen + int(l), true
}

func decodeMessageFrame(payload []byte) (Frame, int, error) {
	c := newCursor(payload)
	l, err := c.uint16()
	if err != nil {
		return nil, 0, err
	}
	receiver, err := c.fixedString(NameLen)
	if err != nil {
		return nil, 0, err
	}
	sender, err := c.fixedString(NameLen)
	if err != nil {
		return nil, 0, err
	}
	if c.remaining() < int(l) {
		return nil, 0, ErrInsufficientBytes
	}
	body, err := stringAt(c, int(l))
	if err != nil {
		return nil, 0, err
	}
	return Message{Receiver: receiver, Sender: sender, Body: body}, c.pos, nil
}

// stringAt reads n raw bytes and validates them as UTF-8, used by kinds
// whose variable-length tail is a plain byte count rather than a var-string
// (the length prefix having already been read separately, earlier in the
// frame, as Message does).
func stringAt(c *cursor, n int) (string, error) {
	if c.remaining() < n {
		return "", ErrInsufficientBytes
	}
	raw := c.buf[c.pos : c.pos+n]
	c.pos += n
	if !validUTF8(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}
