package wire

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/danmuck/mcwire/internal/protocol/varint"
)

// preallocCap keeps a hostile count from reserving memory up front.
const preallocCap = 1024

// VarIntPrefixed is a sequence of elem preceded by a VarInt element count.
func VarIntPrefixed[T any](elem Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		Name: "VarIntPrefixed<" + elem.Name + ">",
		Read: func(r Reader) ([]T, error) {
			n, err := readLength(r, MaxByteArrayLen)
			if err != nil {
				return nil, err
			}
			return readElements(r, elem, n)
		},
		Write: func(w io.Writer, v []T) error {
			if len(v) > MaxByteArrayLen {
				return fmt.Errorf("%w: %d elements", ErrTooLong, len(v))
			}
			if _, err := varint.Write(w, int32(len(v))); err != nil {
				return err
			}
			return writeElements(w, elem, v)
		},
	}
}

// ShortPrefixed is a sequence of elem preceded by a big-endian 16-bit
// element count.
func ShortPrefixed[T any](elem Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		Name: "ShortPrefixed<" + elem.Name + ">",
		Read: func(r Reader) ([]T, error) {
			n, err := Short.Read(r)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: %d", ErrNegativeLength, n)
			}
			return readElements(r, elem, int(n))
		},
		Write: func(w io.Writer, v []T) error {
			if len(v) > math.MaxInt16 {
				return fmt.Errorf("%w: %d elements > %d", ErrTooLong, len(v), math.MaxInt16)
			}
			if err := Short.Write(w, int16(len(v))); err != nil {
				return err
			}
			return writeElements(w, elem, v)
		},
	}
}

// LengthInferred is a sequence of elem with no count: it consumes elements
// until the enclosing payload is exhausted, so it must be the last field.
func LengthInferred[T any](elem Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		Name: "LengthInferred<" + elem.Name + ">",
		Read: func(r Reader) ([]T, error) {
			out := make([]T, 0)
			for {
				if _, err := r.ReadByte(); err != nil {
					if errors.Is(err, io.EOF) {
						return out, nil
					}
					return nil, err
				}
				if err := r.UnreadByte(); err != nil {
					return nil, err
				}
				v, err := elem.Read(r)
				if err != nil {
					if errors.Is(err, io.EOF) {
						err = io.ErrUnexpectedEOF
					}
					return nil, fmt.Errorf("element %d: %w", len(out), err)
				}
				out = append(out, v)
			}
		},
		Write: func(w io.Writer, v []T) error {
			return writeElements(w, elem, v)
		},
	}
}

// RemainingBytes is the byte form of LengthInferred: everything left in
// the payload, verbatim.
var RemainingBytes = Codec[[]byte]{
	Name: "LengthInferred<UnsignedByte>",
	Read: func(r Reader) ([]byte, error) {
		b, err := io.ReadAll(io.LimitReader(r, MaxByteArrayLen+1))
		if err != nil {
			return nil, err
		}
		if len(b) > MaxByteArrayLen {
			return nil, fmt.Errorf("%w: remaining bytes > %d", ErrTooLong, MaxByteArrayLen)
		}
		return b, nil
	},
	Write: func(w io.Writer, v []byte) error {
		return write(w, v)
	},
}

// Optional is a Bool presence flag followed by elem when set.
func Optional[T any](elem Codec[T]) Codec[*T] {
	return Codec[*T]{
		Name: "Optional<" + elem.Name + ">",
		Read: func(r Reader) (*T, error) {
			ok, err := Bool.Read(r)
			if err != nil || !ok {
				return nil, err
			}
			v, err := elem.Read(r)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
		Write: func(w io.Writer, v *T) error {
			if err := Bool.Write(w, v != nil); err != nil {
				return err
			}
			if v == nil {
				return nil
			}
			return elem.Write(w, *v)
		},
	}
}

func readElements[T any](r Reader, elem Codec[T], n int) ([]T, error) {
	out := make([]T, 0, min(n, preallocCap))
	for i := 0; i < n; i++ {
		v, err := elem.Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeElements[T any](w io.Writer, elem Codec[T], v []T) error {
	for i, e := range v {
		if err := elem.Write(w, e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
