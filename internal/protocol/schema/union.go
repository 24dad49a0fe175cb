package schema

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

var ErrUnregisteredVariant = errors.New("schema: value is not a registered variant")

// VariantInfo is the audit view of one union entry.
type VariantInfo struct {
	Literal any
	Tag     string
	Fields  []FieldInfo
}

// Case is one (literal, tag, inline fields) entry of a Union over U with
// discriminant type D.
type Case[U any, D comparable] struct {
	Literal D
	Tag     string

	fields []FieldInfo
	proto  func() any
	owns   func(v any) bool
	encode func(w io.Writer, v U) error
	decode func(r wire.Reader, owner string) (U, error)
}

// Variant declares that literal selects variant type V of union U. Values
// of U may hold either V or *V; decoding always yields *V. It panics when
// *V does not implement U.
func Variant[U any, D comparable, V any](literal D, tag string, fields ...Field[V]) Case[U, D] {
	if _, ok := any(new(V)).(U); !ok {
		var zero U
		panic(fmt.Sprintf("schema: variant %q (%T) does not implement %T", tag, new(V), &zero))
	}
	fields = append([]Field[V](nil), fields...)
	owned := func(v any) (*V, bool) {
		if p, ok := v.(*V); ok {
			return p, p != nil
		}
		if val, ok := v.(V); ok {
			return &val, true
		}
		return nil, false
	}
	return Case[U, D]{
		Literal: literal,
		Tag:     tag,
		fields:  layout(fields),
		proto:   func() any { return new(V) },
		owns: func(v any) bool {
			_, ok := owned(v)
			return ok
		},
		encode: func(w io.Writer, v U) error {
			p, _ := owned(any(v))
			return writeFields(w, tag, fields, p)
		},
		decode: func(r wire.Reader, owner string) (U, error) {
			p := new(V)
			if err := readFields(r, owner+"::"+tag, fields, p); err != nil {
				var zero U
				return zero, err
			}
			return any(p).(U), nil
		},
	}
}

// Union is the codec for a tagged sum type U whose discriminant is a D
// written with disc.
type Union[U any, D comparable] struct {
	name      string
	disc      wire.Codec[D]
	cases     []Case[U, D]
	byLiteral map[D]int
}

// NewUnion builds the discriminant table. It panics on a duplicate literal
// or a variant type registered twice.
func NewUnion[U any, D comparable](name string, disc wire.Codec[D], cases ...Case[U, D]) *Union[U, D] {
	u := &Union[U, D]{
		name:      name,
		disc:      disc,
		cases:     append([]Case[U, D](nil), cases...),
		byLiteral: make(map[D]int, len(cases)),
	}
	for i, c := range u.cases {
		if c.encode == nil {
			panic(fmt.Sprintf("schema: union %s case %d not built with Variant", name, i))
		}
		if j, dup := u.byLiteral[c.Literal]; dup {
			panic(fmt.Sprintf("schema: union %s literal %#v used by %q and %q", name, c.Literal, u.cases[j].Tag, c.Tag))
		}
		for j := 0; j < i; j++ {
			if u.cases[j].owns(c.proto()) {
				panic(fmt.Sprintf("schema: union %s variant %q registered twice (%q)", name, c.Tag, u.cases[j].Tag))
			}
		}
		u.byLiteral[c.Literal] = i
	}
	return u
}

func (u *Union[U, D]) Name() string { return u.name }

// Variants returns the discriminant table in declaration order.
func (u *Union[U, D]) Variants() []VariantInfo {
	out := make([]VariantInfo, len(u.cases))
	for i, c := range u.cases {
		out[i] = VariantInfo{
			Literal: c.Literal,
			Tag:     c.Tag,
			Fields:  append([]FieldInfo(nil), c.fields...),
		}
	}
	return out
}

// Tag reports the variant tag of v.
func (u *Union[U, D]) Tag(v U) (string, bool) {
	for _, c := range u.cases {
		if c.owns(any(v)) {
			return c.Tag, true
		}
	}
	return "", false
}

// Write emits the active variant's literal followed by its fields.
func (u *Union[U, D]) Write(w io.Writer, v U) error {
	for _, c := range u.cases {
		if !c.owns(any(v)) {
			continue
		}
		if err := u.disc.Write(w, c.Literal); err != nil {
			return fmt.Errorf("schema: failed to write discriminant of `%s`: %w", u.name, err)
		}
		if err := c.encode(w, v); err != nil {
			return fmt.Errorf("schema: `%s`: %w", u.name, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %T in union %s", ErrUnregisteredVariant, v, u.name)
}

// Read decodes the discriminant, then the matching variant's fields. An
// unregistered literal is an UnknownDiscriminantError; there is no default
// variant.
func (u *Union[U, D]) Read(r wire.Reader) (U, error) {
	var zero U
	lit, err := u.disc.Read(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return zero, protocol.Format(u.name+".discriminant", err)
	}
	i, ok := u.byLiteral[lit]
	if !ok {
		return zero, &protocol.UnknownDiscriminantError{Union: u.name, Value: lit}
	}
	return u.cases[i].decode(r, u.name)
}

// Codec exposes the union as a wire type for use as a record field.
func (u *Union[U, D]) Codec() wire.Codec[U] {
	return wire.Codec[U]{
		Name:  u.name,
		Read:  u.Read,
		Write: u.Write,
	}
}
