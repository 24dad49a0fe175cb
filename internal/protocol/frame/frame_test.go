package frame

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/varint"
	"github.com/danmuck/mcwire/internal/testutil/testlog"
)

func pack(t *testing.T, m Message, threshold int32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Pack(&buf, threshold); err != nil {
		t.Fatalf("pack id=%d threshold=%d: %v", m.ID, threshold, err)
	}
	return buf.Bytes()
}

func payloadOf(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 7)
	}
	return b
}

func TestPackEmptyMessageWithoutCompression(t *testing.T) {
	testlog.Start(t)
	got := pack(t, Message{ID: 0, Payload: []byte{}}, Disabled)
	if !bytes.Equal(got, []byte{0x01, 0x00}) {
		t.Fatalf("unexpected frame % x", got)
	}
}

func TestRoundTripWithoutCompression(t *testing.T) {
	testlog.Start(t)
	ids := []int32{0, 1, 0x7F, 0x80, 300, -1}
	sizes := []int{0, 1, 127, 128, 5000, 70000}
	for _, id := range ids {
		for _, size := range sizes {
			in := Message{ID: id, Payload: payloadOf(size)}
			out, err := Unpack(pack(t, in, Disabled), Disabled)
			if err != nil {
				t.Fatalf("unpack id=%d size=%d: %v", id, size, err)
			}
			if out.ID != in.ID || !bytes.Equal(out.Payload, in.Payload) {
				t.Fatalf("round trip mismatch id=%d size=%d", id, size)
			}
		}
	}
}

func TestRoundTripWithCompression(t *testing.T) {
	testlog.Start(t)
	thresholds := []int32{0, 1, 64, 256, 1024}
	sizes := []int{0, 1, 62, 63, 64, 255, 256, 4096, 100000}
	for _, threshold := range thresholds {
		for _, size := range sizes {
			in := Message{ID: 0x26, Payload: payloadOf(size)}
			out, err := Unpack(pack(t, in, threshold), threshold)
			if err != nil {
				t.Fatalf("unpack threshold=%d size=%d: %v", threshold, size, err)
			}
			if out.ID != in.ID || !bytes.Equal(out.Payload, in.Payload) {
				t.Fatalf("round trip mismatch threshold=%d size=%d", threshold, size)
			}
		}
	}
}

func TestBelowThresholdCarriesZeroSentinel(t *testing.T) {
	testlog.Start(t)
	got := pack(t, Message{ID: 0x02, Payload: []byte("hi")}, 256)
	want := []byte{0x04, 0x00, 0x02, 'h', 'i'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestThresholdBoundaryCompresses(t *testing.T) {
	testlog.Start(t)
	// VarInt(id) is one byte, so 63 payload bytes make the inner exactly 64.
	at := Message{ID: 0x01, Payload: payloadOf(63)}
	below := Message{ID: 0x01, Payload: payloadOf(62)}
	if !at.Compressed(64) || below.Compressed(64) {
		t.Fatalf("compression decision wrong at boundary")
	}

	b := pack(t, at, 64)
	frameLen, n, err := varint.Decode(b)
	if err != nil || int(frameLen) != len(b)-n {
		t.Fatalf("outer length mismatch: len=%d n=%d err=%v total=%d", frameLen, n, err, len(b))
	}
	declared, _, err := varint.Decode(b[n:])
	if err != nil || declared != 64 {
		t.Fatalf("declared length got=%d err=%v", declared, err)
	}

	b = pack(t, below, 64)
	_, n, _ = varint.Decode(b)
	if b[n] != 0x00 {
		t.Fatalf("expected uncompressed sentinel, got 0x%02x", b[n])
	}
}

func compressedFrame(t *testing.T, declared int32, inner []byte) []byte {
	t.Helper()
	body := varint.Append(nil, declared)
	body, err := deflate(body, inner)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return append(varint.Append(nil, int32(len(body))), body...)
}

func TestUnpackRejectsDeclaredBelowThreshold(t *testing.T) {
	testlog.Start(t)
	inner := []byte{0x01, 'a', 'b'}
	_, err := Unpack(compressedFrame(t, int32(len(inner)), inner), 256)
	if !errors.Is(err, ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold, got %v", err)
	}
	if !errors.Is(err, protocol.ErrViolation) {
		t.Fatalf("expected violation category, got %v", err)
	}
	var ve *protocol.ViolationError
	if !errors.As(err, &ve) || ve.Declared != 3 || ve.Bound != 256 {
		t.Fatalf("unexpected violation detail: %+v", ve)
	}
}

func TestUnpackRejectsDeclaredAboveMaximum(t *testing.T) {
	testlog.Start(t)
	b := compressedFrame(t, MaxDeclaredLen+1, []byte{0x01})
	_, err := Unpack(b, 0)
	if !errors.Is(err, ErrAboveMaximum) || !errors.Is(err, protocol.ErrViolation) {
		t.Fatalf("expected ErrAboveMaximum violation, got %v", err)
	}

	var buf bytes.Buffer
	buf.Write(b)
	if _, err := ReadMessage(&buf, 0); !errors.Is(err, ErrAboveMaximum) {
		t.Fatalf("stream: expected ErrAboveMaximum, got %v", err)
	}
}

func TestUnpackAcceptsDeclaredAtMaximum(t *testing.T) {
	testlog.Start(t)
	in := Message{ID: 0x01, Payload: make([]byte, MaxDeclaredLen-1)}
	out, err := Unpack(pack(t, in, 256), 256)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(out.Payload) != MaxDeclaredLen-1 {
		t.Fatalf("payload length=%d", len(out.Payload))
	}
}

func TestUnpackRejectsInflatedLengthMismatch(t *testing.T) {
	testlog.Start(t)
	inner := []byte{0x01, 'a', 'b'}
	for _, declared := range []int32{2, 10} {
		_, err := Unpack(compressedFrame(t, declared, inner), 0)
		if !errors.Is(err, ErrInflatedLength) || !errors.Is(err, protocol.ErrFormat) {
			t.Fatalf("declared=%d: expected ErrInflatedLength format error, got %v", declared, err)
		}
	}
}

func TestUnpackRejectsBytesAfterDeflateStream(t *testing.T) {
	testlog.Start(t)
	in := Message{ID: 5, Payload: bytes.Repeat([]byte{'a'}, 64)}
	inner := append(varint.Append(nil, in.ID), in.Payload...)
	body, err := deflate(varint.Append(nil, int32(len(inner))), inner)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	body = append(body, 0xDE, 0xAD, 0xBE, 0xEF)
	b := append(varint.Append(nil, int32(len(body))), body...)

	_, err = Unpack(b, 16)
	if !errors.Is(err, ErrTrailingBytes) || !errors.Is(err, protocol.ErrFormat) {
		t.Fatalf("expected ErrTrailingBytes format error, got %v", err)
	}
	var fe *protocol.FormatError
	if !errors.As(err, &fe) || fe.Stage != "frame.inflate" {
		t.Fatalf("unexpected stage: %+v", fe)
	}
}

func TestUnpackRejectsCorruptDeflateStream(t *testing.T) {
	testlog.Start(t)
	body := append(varint.Append(nil, 300), 0xDE, 0xAD, 0xBE, 0xEF)
	b := append(varint.Append(nil, int32(len(body))), body...)
	_, err := Unpack(b, 0)
	if !errors.Is(err, protocol.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestUnpackLengthErrors(t *testing.T) {
	testlog.Start(t)
	b := pack(t, Message{ID: 5, Payload: []byte("payload")}, Disabled)

	if _, err := Unpack(b[:len(b)-1], Disabled); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected short read, got %v", err)
	}
	if _, err := Unpack(append(bytes.Clone(b), 0x00), Disabled); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
	if _, err := Unpack(nil, Disabled); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected short read on empty input, got %v", err)
	}
	if _, err := Unpack([]byte{0x00}, Disabled); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if _, err := Unpack([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, Disabled); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength for negative length, got %v", err)
	}
	tooLarge := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	if _, err := Unpack(tooLarge, Disabled); !errors.Is(err, varint.ErrTooLarge) {
		t.Fatalf("expected varint.ErrTooLarge, got %v", err)
	}
}

func TestUnpackUsesFrameLengthForPayload(t *testing.T) {
	testlog.Start(t)
	// frame_len=3: id=0x7F, payload={0xAA,0xBB}
	out, err := Unpack([]byte{0x03, 0x7F, 0xAA, 0xBB}, Disabled)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.ID != 0x7F || !bytes.Equal(out.Payload, []byte{0xAA, 0xBB}) {
		t.Fatalf("unexpected message %+v", out)
	}
	// a two-byte id shortens the payload by the same amount
	out, err = Unpack([]byte{0x03, 0x80, 0x01, 0xAA}, Disabled)
	if err != nil || out.ID != 128 || !bytes.Equal(out.Payload, []byte{0xAA}) {
		t.Fatalf("unexpected message %+v err=%v", out, err)
	}
}

func TestReadMessageStreamsFrames(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	msgs := []Message{
		{ID: 0, Payload: []byte{}},
		{ID: 1, Payload: payloadOf(10)},
		{ID: 2, Payload: payloadOf(9000)},
	}
	for _, m := range msgs {
		if err := WriteMessage(&buf, m, 256); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	r := bufio.NewReader(&buf)
	for _, want := range msgs {
		got, err := ReadMessage(r, 256)
		if err != nil {
			t.Fatalf("read id=%d: %v", want.ID, err)
		}
		if got.ID != want.ID || !bytes.Equal(got.Payload, want.Payload) {
			t.Fatalf("stream mismatch id=%d", want.ID)
		}
	}
	if _, err := ReadMessage(r, 256); err != io.EOF {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReadMessageShortBodyIsIOError(t *testing.T) {
	testlog.Start(t)
	b := pack(t, Message{ID: 9, Payload: payloadOf(20)}, Disabled)
	_, err := ReadMessage(bytes.NewReader(b[:10]), Disabled)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if errors.Is(err, protocol.ErrFormat) {
		t.Fatalf("short stream read must not be a format error")
	}
}

func TestReadMessageRejectsOversizedFrameBeforeReading(t *testing.T) {
	testlog.Start(t)
	b := varint.Append(nil, MaxFrameLen+1)
	_, err := ReadMessage(bytes.NewReader(b), Disabled)
	if !errors.Is(err, ErrFrameTooLarge) || !errors.Is(err, protocol.ErrViolation) {
		t.Fatalf("expected ErrFrameTooLarge violation, got %v", err)
	}
}

func TestUnpackMissingMessageID(t *testing.T) {
	testlog.Start(t)
	// compression on, uncompressed sentinel, then nothing
	_, err := Unpack([]byte{0x01, 0x00}, 0)
	if !errors.Is(err, ErrMissingMessageID) || !errors.Is(err, protocol.ErrFormat) {
		t.Fatalf("expected ErrMissingMessageID, got %v", err)
	}
}

func TestPackRefusesOversizedBody(t *testing.T) {
	testlog.Start(t)
	m := Message{ID: 0x01, Payload: make([]byte, MaxFrameLen)}
	var buf bytes.Buffer
	if err := m.Pack(&buf, Disabled); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %d bytes on error", buf.Len())
	}
	// the same payload compresses well below the bound
	if err := m.Pack(&buf, 0); err != nil {
		t.Fatalf("compressed pack: %v", err)
	}
}
