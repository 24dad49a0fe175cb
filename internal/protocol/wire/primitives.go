package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/danmuck/mcwire/internal/protocol/varint"
	"github.com/google/uuid"
)

const (
	// MaxStringLen is the largest string length, in UTF-16 code units, the
	// protocol allows.
	MaxStringLen = 32767
	// MaxByteArrayLen bounds any length-prefixed byte or element count.
	MaxByteArrayLen = 2097152
)

var (
	ErrTrailingBytes  = errors.New("wire: trailing bytes")
	ErrNegativeLength = errors.New("wire: negative length")
	ErrTooLong        = errors.New("wire: length exceeds limit")
	ErrInvalidBool    = errors.New("wire: invalid bool value")
	ErrInvalidUTF8    = errors.New("wire: invalid utf-8 string")
)

func readFull(r Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readFixed(r Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

func write(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

var Bool = Codec[bool]{
	Name: "Bool",
	Read: func(r Reader) (bool, error) {
		b, err := r.ReadByte()
		if err != nil {
			return false, err
		}
		switch b {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBool, b)
		}
	},
	Write: func(w io.Writer, v bool) error {
		if v {
			return write(w, []byte{1})
		}
		return write(w, []byte{0})
	},
}

var Byte = Codec[int8]{
	Name: "Byte",
	Read: func(r Reader) (int8, error) {
		b, err := r.ReadByte()
		return int8(b), err
	},
	Write: func(w io.Writer, v int8) error {
		return write(w, []byte{byte(v)})
	},
}

var UByte = Codec[uint8]{
	Name: "UnsignedByte",
	Read: func(r Reader) (uint8, error) {
		return r.ReadByte()
	},
	Write: func(w io.Writer, v uint8) error {
		return write(w, []byte{v})
	},
}

var Short = Codec[int16]{
	Name: "Short",
	Read: func(r Reader) (int16, error) {
		var buf [2]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return int16(binary.BigEndian.Uint16(buf[:])), nil
	},
	Write: func(w io.Writer, v int16) error {
		return write(w, binary.BigEndian.AppendUint16(nil, uint16(v)))
	},
}

var UShort = Codec[uint16]{
	Name: "UnsignedShort",
	Read: func(r Reader) (uint16, error) {
		var buf [2]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint16(buf[:]), nil
	},
	Write: func(w io.Writer, v uint16) error {
		return write(w, binary.BigEndian.AppendUint16(nil, v))
	},
}

var Int = Codec[int32]{
	Name: "Int",
	Read: func(r Reader) (int32, error) {
		var buf [4]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return int32(binary.BigEndian.Uint32(buf[:])), nil
	},
	Write: func(w io.Writer, v int32) error {
		return write(w, binary.BigEndian.AppendUint32(nil, uint32(v)))
	},
}

var Long = Codec[int64]{
	Name: "Long",
	Read: func(r Reader) (int64, error) {
		var buf [8]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(buf[:])), nil
	},
	Write: func(w io.Writer, v int64) error {
		return write(w, binary.BigEndian.AppendUint64(nil, uint64(v)))
	},
}

var Float = Codec[float32]{
	Name: "Float",
	Read: func(r Reader) (float32, error) {
		var buf [4]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
	},
	Write: func(w io.Writer, v float32) error {
		return write(w, binary.BigEndian.AppendUint32(nil, math.Float32bits(v)))
	},
}

var Double = Codec[float64]{
	Name: "Double",
	Read: func(r Reader) (float64, error) {
		var buf [8]byte
		if err := readFixed(r, buf[:]); err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
	},
	Write: func(w io.Writer, v float64) error {
		return write(w, binary.BigEndian.AppendUint64(nil, math.Float64bits(v)))
	},
}

// VarInt stores a logical int32 as a variable-length integer.
var VarInt = Codec[int32]{
	Name: "VarInt",
	Read: func(r Reader) (int32, error) {
		return varint.Read(r)
	},
	Write: func(w io.Writer, v int32) error {
		_, err := varint.Write(w, v)
		return err
	},
}

// VarLong stores a logical int64 as a variable-length integer.
var VarLong = Codec[int64]{
	Name: "VarLong",
	Read: func(r Reader) (int64, error) {
		return varint.ReadLong(r)
	},
	Write: func(w io.Writer, v int64) error {
		return write(w, varint.AppendLong(nil, v))
	},
}

// readLength reads a VarInt count and checks it against limit.
func readLength(r Reader, limit int) (int, error) {
	n, err := varint.Read(r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeLength, n)
	}
	if int(n) > limit {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooLong, n, limit)
	}
	return int(n), nil
}

// String is a VarInt byte-length prefixed UTF-8 string.
var String = BoundedString(MaxStringLen)

// BoundedString is String with a custom cap on UTF-16 code units.
func BoundedString(maxUnits int) Codec[string] {
	maxBytes := maxUnits * 3
	return Codec[string]{
		Name: fmt.Sprintf("String(%d)", maxUnits),
		Read: func(r Reader) (string, error) {
			n, err := readLength(r, maxBytes)
			if err != nil {
				return "", err
			}
			buf, err := readFull(r, n)
			if err != nil {
				return "", err
			}
			if !utf8.Valid(buf) {
				return "", ErrInvalidUTF8
			}
			s := string(buf)
			if units := utf16Len(s); units > maxUnits {
				return "", fmt.Errorf("%w: %d code units > %d", ErrTooLong, units, maxUnits)
			}
			return s, nil
		},
		Write: func(w io.Writer, v string) error {
			if units := utf16Len(v); units > maxUnits {
				return fmt.Errorf("%w: %d code units > %d", ErrTooLong, units, maxUnits)
			}
			buf := varint.Append(make([]byte, 0, varint.MaxLen+len(v)), int32(len(v)))
			return write(w, append(buf, v...))
		},
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ByteArray is a VarInt-prefixed opaque byte string.
var ByteArray = Codec[[]byte]{
	Name: "ByteArray",
	Read: func(r Reader) ([]byte, error) {
		n, err := readLength(r, MaxByteArrayLen)
		if err != nil {
			return nil, err
		}
		return readFull(r, n)
	},
	Write: func(w io.Writer, v []byte) error {
		if len(v) > MaxByteArrayLen {
			return fmt.Errorf("%w: %d > %d", ErrTooLong, len(v), MaxByteArrayLen)
		}
		buf := varint.Append(make([]byte, 0, varint.MaxLen+len(v)), int32(len(v)))
		return write(w, append(buf, v...))
	},
}

// Angle stores degrees as one byte of 1/256 turn steps.
var Angle = Codec[float32]{
	Name: "Angle",
	Read: func(r Reader) (float32, error) {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		return float32(b) * 360 / 256, nil
	},
	Write: func(w io.Writer, v float32) error {
		steps := math.Round(float64(v) * 256 / 360)
		return write(w, []byte{byte(int64(steps) & 0xFF)})
	},
}

// UUID is a 128-bit value as two big-endian longs.
var UUID = Codec[uuid.UUID]{
	Name: "UUID",
	Read: func(r Reader) (uuid.UUID, error) {
		var id uuid.UUID
		if err := readFixed(r, id[:]); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	},
	Write: func(w io.Writer, v uuid.UUID) error {
		return write(w, v[:])
	},
}
