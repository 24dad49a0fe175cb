package varint

import (
	"errors"
	"io"

	"github.com/danmuck/mcwire/internal/protocol"
)

const (
	// MaxLen is the longest encoding of a 32-bit VarInt.
	MaxLen = 5
	// MaxLongLen is the longest encoding of a 64-bit VarLong.
	MaxLongLen = 10

	segmentBits  = 0x7F
	continueBit  = 0x80
	segmentShift = 7

	// Bits of the final byte that would land above the value width.
	overflowBits     = 0x70
	longOverflowBits = 0x7E
)

var (
	ErrTooLarge     = errors.New("varint: VarInt too large")
	ErrLongTooLarge = errors.New("varint: VarLong too large")
)

// Len returns the number of bytes Append emits for v.
func Len(v int32) int {
	u := uint32(v)
	n := 1
	for u >= continueBit {
		u >>= segmentShift
		n++
	}
	return n
}

// Append appends the minimal encoding of v to dst.
func Append(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= continueBit {
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= segmentShift
	}
	return append(dst, byte(u))
}

// Encode returns the minimal encoding of v.
func Encode(v int32) []byte {
	return Append(make([]byte, 0, Len(v)), v)
}

// Write writes the encoding of v to w in a single call.
func Write(w io.Writer, v int32) (int, error) {
	var buf [MaxLen]byte
	return w.Write(Append(buf[:0], v))
}

// Read decodes one VarInt from r. io.EOF is returned only when r is
// exhausted before the first byte; a value cut short reports
// io.ErrUnexpectedEOF.
func Read(r io.ByteReader) (int32, error) {
	var u uint32
	for i := 0; i < MaxLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == MaxLen-1 && b&overflowBits != 0 {
			return 0, protocol.Format("varint", ErrTooLarge)
		}
		u |= uint32(b&segmentBits) << (segmentShift * i)
		if b&continueBit == 0 {
			return int32(u), nil
		}
	}
	return 0, protocol.Format("varint", ErrTooLarge)
}

// Decode decodes one VarInt from the front of b and reports how many
// bytes it used.
func Decode(b []byte) (int32, int, error) {
	var u uint32
	for i := 0; i < MaxLen; i++ {
		if i >= len(b) {
			if i == 0 {
				return 0, 0, io.EOF
			}
			return 0, 0, io.ErrUnexpectedEOF
		}
		if i == MaxLen-1 && b[i]&overflowBits != 0 {
			return 0, 0, protocol.Format("varint", ErrTooLarge)
		}
		u |= uint32(b[i]&segmentBits) << (segmentShift * i)
		if b[i]&continueBit == 0 {
			return int32(u), i + 1, nil
		}
	}
	return 0, 0, protocol.Format("varint", ErrTooLarge)
}

// LenLong returns the number of bytes AppendLong emits for v.
func LenLong(v int64) int {
	u := uint64(v)
	n := 1
	for u >= continueBit {
		u >>= segmentShift
		n++
	}
	return n
}

// AppendLong appends the minimal VarLong encoding of v to dst.
func AppendLong(dst []byte, v int64) []byte {
	u := uint64(v)
	for u >= continueBit {
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= segmentShift
	}
	return append(dst, byte(u))
}

// ReadLong decodes one VarLong from r with the same EOF rules as Read.
func ReadLong(r io.ByteReader) (int64, error) {
	var u uint64
	for i := 0; i < MaxLongLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == MaxLongLen-1 && b&longOverflowBits != 0 {
			return 0, protocol.Format("varlong", ErrLongTooLarge)
		}
		u |= uint64(b&segmentBits) << (segmentShift * i)
		if b&continueBit == 0 {
			return int64(u), nil
		}
	}
	return 0, protocol.Format("varlong", ErrLongTooLarge)
}
