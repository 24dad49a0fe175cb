// Package wire defines the wire-type contract and the adapters the schema
// facility binds packet fields to.
//
// Every adapter is a Codec[T]: a named pair of Read/Write functions for one
// logical Go type. Multi-byte fixed-width values are big-endian.
package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Reader is what adapters read from. *bytes.Reader and *bufio.Reader
// satisfy it directly; NewReader adapts anything else. UnreadByte lets
// length-inferred sequences probe for the end of the payload.
type Reader interface {
	io.Reader
	io.ByteScanner
}

// Codec is the wire-type contract: read(stream) -> T, write(T, stream).
type Codec[T any] struct {
	// Name is the wire-type tag reported in schema layouts and errors.
	Name  string
	Read  func(r Reader) (T, error)
	Write func(w io.Writer, v T) error
}

// NewReader returns r as a Reader, buffering it when it lacks ReadByte.
func NewReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Marshal encodes v with c into a fresh buffer.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one value from b, rejecting leftover bytes.
func Unmarshal[T any](c Codec[T], b []byte) (T, error) {
	r := bytes.NewReader(b)
	v, err := c.Read(r)
	if err != nil {
		return v, err
	}
	if r.Len() != 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d bytes after %s", ErrTrailingBytes, r.Len(), c.Name)
	}
	return v, nil
}

// Map adapts a codec of S into a codec of T, e.g. an enum stored as a VarInt.
func Map[S, T any](name string, c Codec[S], decode func(S) (T, error), encode func(T) S) Codec[T] {
	return Codec[T]{
		Name: name,
		Read: func(r Reader) (T, error) {
			s, err := c.Read(r)
			if err != nil {
				var zero T
				return zero, err
			}
			return decode(s)
		},
		Write: func(w io.Writer, v T) error {
			return c.Write(w, encode(v))
		},
	}
}
