package wire

import (
	"errors"
	"io"
)

// ErrNeedMore is returned by DecodeBuffer when buf does not yet contain a
// complete frame. No bytes are consumed; the caller should read more data
// and retry with a longer buffer.
var ErrNeedMore = errors.New("wire: need more bytes")

// fixedLayoutSize returns the number of payload bytes (excluding the type
// byte) that ReadFrame must read before it can determine whether the kind
// has a further variable-length tail. For kinds whose total size is fixed
// this is the whole payload; for the rest it is exactly the prefix needed
// to learn the trailing length.
func fixedLayoutSize(k Kind) (prefix int, variable bool) {
	switch k {
	case KindMessage:
		return 2, true // u16 len, then names + body
	case KindChangeRoom:
		return 2, false
	case KindFight, KindStart, KindLeave:
		return 0, false
	case KindPvPFight, KindLoot:
		return NameLen, false
	case KindError:
		return 3, true // u8 code, u16 len, then text
	case KindAccept:
		return 1, false
	case KindRoom, KindConnection:
		return 2 + NameLen + 2, true
	case KindCharacter:
		return NameLen + 1 + 2 + 2 + 2 + 2 + 2 + 2 + 2, true
	case KindGame:
		return 6, true
	default:
		return 0, false
	}
}

// ReadFrame reads exactly one complete frame from r, blocking until either
// the frame has fully arrived, r returns io.EOF before any byte of a new
// frame is read, or an I/O or protocol error occurs.
func ReadFrame(r io.Reader) (Frame, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, err
	}
	k := Kind(tagBuf[0])
	decode, ok := decoders[k]
	if !ok {
		return nil, ErrUnknownKind{Byte: tagBuf[0]}
	}

	prefix, variable := fixedLayoutSize(k)
	payload := make([]byte, prefix)
	if prefix > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, unexpectedEOF(err)
		}
	}

	if variable {
		sizer := sizers[k]
		total, known := sizer(payload)
		if !known {
			return nil, errors.New("wire: sizer could not determine length from read prefix")
		}
		tail := make([]byte, total-prefix)
		if len(tail) > 0 {
			if _, err := io.ReadFull(r, tail); err != nil {
				return nil, unexpectedEOF(err)
			}
		}
		payload = append(payload, tail...)
	}

	frame, _, err := decode(payload)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// unexpectedEOF turns a bare io.EOF encountered mid-frame into
// io.ErrUnexpectedEOF, since only an EOF on the very first tag byte is a
// clean peer disconnect.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// DecodeBuffer attempts to decode a single frame from the head of buf
// without blocking. It never consumes bytes on a NeedMore result: on
// success it returns the frame and the number of bytes (including the
// type byte) the caller should discard from the front of its buffer.
func DecodeBuffer(buf []byte) (Frame, int, error) {
	if len(buf) < 1 {
		return nil, 0, ErrNeedMore
	}
	k := Kind(buf[0])
	decode, ok := decoders[k]
	if !ok {
		return nil, 0, ErrUnknownKind{Byte: buf[0]}
	}
	sizer := sizers[k]
	payload := buf[1:]
	total, known := sizer(payload)
	if !known || len(payload) < total {
		return nil, 0, ErrNeedMore
	}
	frame, consumed, err := decode(payload[:total])
	if err != nil {
		return nil, 0, err
	}
	return frame, 1 + consumed, nil
}

// WriteFrame encodes m and writes it to w in a single Write call,
// retrying on short writes until the whole frame is sent or an I/O error
// occurs.
func WriteFrame(w io.Writer, m Frame) error {
	buf := m.Encode()
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
