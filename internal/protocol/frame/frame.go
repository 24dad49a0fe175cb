// Package frame packs and unpacks one (id, payload) message per
// length-prefixed frame, optionally zlib-compressed above a threshold.
//
//	threshold < 0:               VarInt(len) ++ VarInt(id) ++ payload
//	threshold >= 0, below:       VarInt(len) ++ VarInt(0) ++ VarInt(id) ++ payload
//	threshold >= 0, at or above: VarInt(len) ++ VarInt(len(inner)) ++ zlib(inner)
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	logs "github.com/danmuck/mcwire/internal/logs"
	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/varint"
)

const (
	// MaxDeclaredLen caps the uncompressed length a compressed frame may
	// declare.
	MaxDeclaredLen = 2097152
	// MaxFrameLen is the largest frame body accepted from a stream: the
	// largest value a 3-byte VarInt can carry.
	MaxFrameLen = 2097151

	// Disabled is the threshold value that turns compression off.
	Disabled int32 = -1
)

var (
	ErrBelowThreshold   = errors.New("frame: data length is smaller than threshold")
	ErrAboveMaximum     = errors.New("frame: data length is larger than protocol maximum")
	ErrInvalidLength    = errors.New("frame: invalid frame length")
	ErrInvalidDeclared  = errors.New("frame: invalid declared length")
	ErrFrameTooLarge    = errors.New("frame: frame too large")
	ErrTrailingBytes    = errors.New("frame: trailing bytes after frame")
	ErrInflatedLength   = errors.New("frame: inflated length does not match declared length")
	ErrMissingMessageID = errors.New("frame: frame body has no message id")
)

// Message is one undecoded protocol message. Payload excludes the id and
// the outer length prefix.
type Message struct {
	ID      int32
	Payload []byte
}

// Reader is the stream view ReadMessage consumes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Compressed reports whether m is deflated when packed under threshold.
func (m Message) Compressed(threshold int32) bool {
	return threshold >= 0 && m.innerLen() >= int(threshold)
}

func (m Message) innerLen() int {
	return varint.Len(m.ID) + len(m.Payload)
}

func (m Message) appendInner(dst []byte) []byte {
	dst = varint.Append(dst, m.ID)
	return append(dst, m.Payload...)
}

// Append appends the packed frame for m to dst. A frame body longer than
// MaxFrameLen is refused with ErrFrameTooLarge at every threshold,
// including Disabled.
func (m Message) Append(dst []byte, threshold int32) ([]byte, error) {
	var body []byte
	switch {
	case threshold < 0:
		body = m.appendInner(make([]byte, 0, m.innerLen()))
	case !m.Compressed(threshold):
		body = varint.Append(make([]byte, 0, 1+m.innerLen()), 0)
		body = m.appendInner(body)
	default:
		inner := m.appendInner(make([]byte, 0, m.innerLen()))
		if len(inner) > MaxDeclaredLen {
			return dst, fmt.Errorf("%w: %d > %d", ErrAboveMaximum, len(inner), MaxDeclaredLen)
		}
		body = varint.Append(make([]byte, 0, varint.MaxLen+len(inner)/2), int32(len(inner)))
		var err error
		body, err = deflate(body, inner)
		if err != nil {
			return dst, err
		}
	}
	if len(body) > MaxFrameLen {
		return dst, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), MaxFrameLen)
	}
	dst = varint.Append(dst, int32(len(body)))
	return append(dst, body...), nil
}

// Pack writes the frame for m to w in a single Write call. Sends share the
// MaxFrameLen bound of Append, so a body that would not fit a 3-byte length
// prefix fails with ErrFrameTooLarge and nothing is written.
func (m Message) Pack(w io.Writer, threshold int32) error {
	b, err := m.Append(make([]byte, 0, varint.MaxLen+1+m.innerLen()), threshold)
	if err != nil {
		return err
	}
	logs.Debugf("frame.Pack id=0x%02x payload=%d frame=%d threshold=%d", m.ID, len(m.Payload), len(b), threshold)
	_, err = w.Write(b)
	return err
}

// Unpack decodes b, which must hold exactly one frame.
func Unpack(b []byte, threshold int32) (Message, error) {
	frameLen, n, err := varint.Decode(b)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Message{}, protocol.Format("frame.length", err)
	}
	if frameLen <= 0 {
		return Message{}, protocol.Format("frame.length", fmt.Errorf("%w: %d", ErrInvalidLength, frameLen))
	}
	rest := b[n:]
	if len(rest) < int(frameLen) {
		return Message{}, fmt.Errorf("frame: body: %w (have %d of %d bytes)", io.ErrUnexpectedEOF, len(rest), frameLen)
	}
	if len(rest) > int(frameLen) {
		return Message{}, protocol.Format("frame.length", fmt.Errorf("%w: %d", ErrTrailingBytes, len(rest)-int(frameLen)))
	}
	return decodeBody(rest, threshold)
}

// ReadMessage reads and decodes one frame from r. Stream errors, including
// io.EOF between frames and io.ErrUnexpectedEOF inside one, are returned
// unwrapped.
func ReadMessage(r Reader, threshold int32) (Message, error) {
	frameLen, err := varint.Read(r)
	if err != nil {
		return Message{}, err
	}
	if frameLen <= 0 {
		return Message{}, protocol.Format("frame.length", fmt.Errorf("%w: %d", ErrInvalidLength, frameLen))
	}
	if frameLen > MaxFrameLen {
		return Message{}, &protocol.ViolationError{Reason: ErrFrameTooLarge, Declared: int64(frameLen), Bound: MaxFrameLen}
	}
	body := make([]byte, frameLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Message{}, err
	}
	return decodeBody(body, threshold)
}

// WriteMessage is Pack with the arguments in stream order.
func WriteMessage(w io.Writer, m Message, threshold int32) error {
	return m.Pack(w, threshold)
}

func decodeBody(body []byte, threshold int32) (Message, error) {
	if threshold < 0 {
		return decodeInner(body, "frame")
	}
	declared, n, err := varint.Decode(body)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Message{}, protocol.Format("frame.data_length", err)
	}
	if declared == 0 {
		return decodeInner(body[n:], "frame")
	}
	if declared < 0 {
		return Message{}, protocol.Format("frame.data_length", fmt.Errorf("%w: %d", ErrInvalidDeclared, declared))
	}
	if declared < threshold {
		return Message{}, &protocol.ViolationError{Reason: ErrBelowThreshold, Declared: int64(declared), Bound: int64(threshold)}
	}
	if declared > MaxDeclaredLen {
		return Message{}, &protocol.ViolationError{Reason: ErrAboveMaximum, Declared: int64(declared), Bound: MaxDeclaredLen}
	}
	inner, err := inflate(body[n:], int(declared))
	if err != nil {
		return Message{}, protocol.Format("frame.inflate", err)
	}
	logs.Debugf("frame.decode inflated compressed=%d declared=%d", len(body)-n, declared)
	return decodeInner(inner, "frame.inflated")
}

func decodeInner(inner []byte, stage string) (Message, error) {
	id, n, err := varint.Decode(inner)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrMissingMessageID
		}
		return Message{}, protocol.Format(stage+".id", err)
	}
	payload := bytes.Clone(inner[n:])
	if payload == nil {
		payload = []byte{}
	}
	return Message{ID: id, Payload: payload}, nil
}
