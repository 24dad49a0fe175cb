package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func roundTrip[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	b, err := Marshal(c, v)
	if err != nil {
		t.Fatalf("%s marshal: %v", c.Name, err)
	}
	got, err := Unmarshal(c, b)
	if err != nil {
		t.Fatalf("%s unmarshal: %v", c.Name, err)
	}
	return got
}

func TestPrimitiveRoundTrip(t *testing.T) {
	if got := roundTrip(t, Bool, true); !got {
		t.Fatalf("bool mismatch")
	}
	if got := roundTrip(t, Byte, int8(-7)); got != -7 {
		t.Fatalf("byte got=%d", got)
	}
	if got := roundTrip(t, UByte, uint8(250)); got != 250 {
		t.Fatalf("ubyte got=%d", got)
	}
	if got := roundTrip(t, Short, int16(math.MinInt16)); got != math.MinInt16 {
		t.Fatalf("short got=%d", got)
	}
	if got := roundTrip(t, UShort, uint16(25565)); got != 25565 {
		t.Fatalf("ushort got=%d", got)
	}
	if got := roundTrip(t, Int, int32(-123456)); got != -123456 {
		t.Fatalf("int got=%d", got)
	}
	if got := roundTrip(t, Long, int64(math.MaxInt64)); got != math.MaxInt64 {
		t.Fatalf("long got=%d", got)
	}
	if got := roundTrip(t, Float, float32(1.5)); got != 1.5 {
		t.Fatalf("float got=%v", got)
	}
	if got := roundTrip(t, Double, -2.25); got != -2.25 {
		t.Fatalf("double got=%v", got)
	}
	if got := roundTrip(t, VarInt, int32(-1)); got != -1 {
		t.Fatalf("varint got=%d", got)
	}
	if got := roundTrip(t, VarLong, int64(math.MinInt64)); got != math.MinInt64 {
		t.Fatalf("varlong got=%d", got)
	}
	if got := roundTrip(t, String, "héllo ✓"); got != "héllo ✓" {
		t.Fatalf("string got=%q", got)
	}
	id := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	if got := roundTrip(t, UUID, id); got != id {
		t.Fatalf("uuid got=%v", got)
	}
}

func TestUShortIsBigEndian(t *testing.T) {
	b, err := Marshal(UShort, 25565)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{0x63, 0xDD}) {
		t.Fatalf("unexpected bytes % x", b)
	}
}

func TestBoolRejectsOtherValues(t *testing.T) {
	_, err := Unmarshal(Bool, []byte{2})
	if !errors.Is(err, ErrInvalidBool) {
		t.Fatalf("expected ErrInvalidBool, got %v", err)
	}
}

func TestStringLimits(t *testing.T) {
	short := BoundedString(4)
	if _, err := Marshal(short, "abcde"); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong on write, got %v", err)
	}
	raw, err := Marshal(String, "abcde")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Unmarshal(short, raw); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong on read, got %v", err)
	}
	if _, err := Unmarshal(String, []byte{0x02, 0xC3, 0x28}); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if _, err := Unmarshal(String, []byte{0x05, 'a', 'b'}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected short read, got %v", err)
	}
	// -1 length prefix
	if _, err := Unmarshal(String, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}); !errors.Is(err, ErrNegativeLength) {
		t.Fatalf("expected ErrNegativeLength, got %v", err)
	}
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	if _, err := Unmarshal(VarInt, []byte{0x01, 0x02}); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestAngleSteps(t *testing.T) {
	b, err := Marshal(Angle, 90)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{64}) {
		t.Fatalf("90 degrees encoded as % x", b)
	}
	if got := roundTrip(t, Angle, 270); got != 270 {
		t.Fatalf("angle got=%v", got)
	}
	if got := roundTrip(t, Angle, -90); got != 270 {
		t.Fatalf("negative angle got=%v", got)
	}
}

func TestPrefixedSequences(t *testing.T) {
	in := []string{"a", "bc", ""}
	got := roundTrip(t, VarIntPrefixed(String), in)
	if strings.Join(got, ",") != "a,bc," || len(got) != 3 {
		t.Fatalf("varint-prefixed got=%q", got)
	}
	b, err := Marshal(ShortPrefixed(UByte), []uint8{7, 8})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{0x00, 0x02, 7, 8}) {
		t.Fatalf("short-prefixed bytes % x", b)
	}
	if _, err := Unmarshal(VarIntPrefixed(Int), []byte{0x02, 0, 0, 0, 1}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected truncated element, got %v", err)
	}
	if _, err := Unmarshal(ShortPrefixed(UByte), []byte{0xFF, 0xFF}); !errors.Is(err, ErrNegativeLength) {
		t.Fatalf("expected ErrNegativeLength, got %v", err)
	}
}

func TestLengthInferredConsumesRest(t *testing.T) {
	got := roundTrip(t, LengthInferred(UShort), []uint16{1, 2, 3})
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("got=%v", got)
	}
	empty := roundTrip(t, LengthInferred(UShort), nil)
	if len(empty) != 0 {
		t.Fatalf("expected empty, got %v", empty)
	}
	if _, err := Unmarshal(LengthInferred(UShort), []byte{0, 1, 2}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected partial element failure, got %v", err)
	}
	raw := roundTrip(t, RemainingBytes, []byte{9, 8, 7})
	if !bytes.Equal(raw, []byte{9, 8, 7}) {
		t.Fatalf("remaining bytes got=% x", raw)
	}
}

func TestOptional(t *testing.T) {
	v := int32(42)
	got := roundTrip(t, Optional(VarInt), &v)
	if got == nil || *got != 42 {
		t.Fatalf("optional got=%v", got)
	}
	if got := roundTrip(t, Optional(VarInt), nil); got != nil {
		t.Fatalf("expected nil, got %v", *got)
	}
}

func TestMapBuildsLogicalTypes(t *testing.T) {
	type state int
	errBad := errors.New("bad state")
	c := Map("State", VarInt, func(v int32) (state, error) {
		if v < 1 || v > 3 {
			return 0, errBad
		}
		return state(v), nil
	}, func(s state) int32 { return int32(s) })
	if got := roundTrip(t, c, state(2)); got != 2 {
		t.Fatalf("got=%d", got)
	}
	if _, err := Unmarshal(c, []byte{0x09}); !errors.Is(err, errBad) {
		t.Fatalf("expected errBad, got %v", err)
	}
}

func TestNewReaderKeepsByteScanners(t *testing.T) {
	br := bytes.NewReader([]byte{1})
	if NewReader(br) != Reader(br) {
		t.Fatalf("expected the same reader back")
	}
	r := NewReader(io.MultiReader(bytes.NewReader([]byte{0xAC, 0x02})))
	v, err := VarInt.Read(r)
	if err != nil || v != 300 {
		t.Fatalf("got (%d,%v)", v, err)
	}
}
