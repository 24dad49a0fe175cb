package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

var (
	ErrIDMismatch    = errors.New("schema: message id does not match packet")
	ErrTrailingBytes = errors.New("schema: trailing bytes after last field")
)

// Packet is a typed message that knows its own id and record.
type Packet interface {
	Encode() (frame.Message, error)
}

// FieldInfo is the audit view of one declared field.
type FieldInfo struct {
	Name string
	Type string
}

// Field is one declared field of P, bound to its storage by Bind.
type Field[P any] struct {
	Name  string
	Type  string
	read  func(r wire.Reader, p *P) error
	write func(w io.Writer, p *P) error
}

// Bind declares field name of P stored at get(p) with wire type c.
func Bind[P, T any](name string, c wire.Codec[T], get func(*P) *T) Field[P] {
	return Field[P]{
		Name: name,
		Type: c.Name,
		read: func(r wire.Reader, p *P) error {
			v, err := c.Read(r)
			if err != nil {
				return err
			}
			*get(p) = v
			return nil
		},
		write: func(w io.Writer, p *P) error {
			return c.Write(w, *get(p))
		},
	}
}

// Record is the codec for one packet type.
type Record[P any] struct {
	name   string
	id     int32
	fields []Field[P]
}

// NewRecord declares packet name with id and its fields in wire order. It
// panics on a malformed declaration; records are package-level tables.
func NewRecord[P any](name string, id int32, fields ...Field[P]) *Record[P] {
	if name == "" {
		panic("schema: record without a name")
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.read == nil || f.write == nil {
			panic(fmt.Sprintf("schema: %s field %d not built with Bind", name, i))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("schema: %s declares field %q twice", name, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return &Record[P]{
		name:   name,
		id:     id,
		fields: append([]Field[P](nil), fields...),
	}
}

func (r *Record[P]) Name() string { return r.name }

func (r *Record[P]) ID() int32 { return r.id }

// Layout returns the declared fields in wire order.
func (r *Record[P]) Layout() []FieldInfo {
	return layout(r.fields)
}

func layout[P any](fields []Field[P]) []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = FieldInfo{Name: f.Name, Type: f.Type}
	}
	return out
}

// WritePayload writes every field of p in declared order.
func (r *Record[P]) WritePayload(w io.Writer, p *P) error {
	return writeFields(w, r.name, r.fields, p)
}

// ReadPayload fills p from rd, field by field in declared order.
func (r *Record[P]) ReadPayload(rd wire.Reader, p *P) error {
	return readFields(rd, r.name, r.fields, p)
}

// Encode builds the Message carrying p.
func (r *Record[P]) Encode(p *P) (frame.Message, error) {
	var buf bytes.Buffer
	if err := r.WritePayload(&buf, p); err != nil {
		return frame.Message{}, err
	}
	return frame.Message{ID: r.id, Payload: buf.Bytes()}, nil
}

// Decode parses m into a new P. The id must match and the fields must use
// the whole payload.
func (r *Record[P]) Decode(m frame.Message) (*P, error) {
	if m.ID != r.id {
		return nil, protocol.Format(r.name, fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrIDMismatch, m.ID, r.id))
	}
	rd := bytes.NewReader(m.Payload)
	p := new(P)
	if err := r.ReadPayload(rd, p); err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, protocol.Format(r.name, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, rd.Len()))
	}
	return p, nil
}

// Codec exposes the record as a wire type so it can nest inside another
// record, a union or a sequence.
func (r *Record[P]) Codec() wire.Codec[P] {
	return wire.Codec[P]{
		Name: r.name,
		Read: func(rd wire.Reader) (P, error) {
			var p P
			err := r.ReadPayload(rd, &p)
			return p, err
		},
		Write: func(w io.Writer, v P) error {
			return r.WritePayload(w, &v)
		},
	}
}

func writeFields[P any](w io.Writer, owner string, fields []Field[P], p *P) error {
	for _, f := range fields {
		if err := f.write(w, p); err != nil {
			return fmt.Errorf("schema: failed to write field `%s` of `%s`: %w", f.Name, owner, err)
		}
	}
	return nil
}

func readFields[P any](rd wire.Reader, owner string, fields []Field[P], p *P) error {
	for _, f := range fields {
		if err := f.read(rd, p); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return protocol.Format(owner+"."+f.Name, err)
		}
	}
	return nil
}
