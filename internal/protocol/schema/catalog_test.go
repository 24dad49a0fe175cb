package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/danmuck/mcwire/internal/testutil/testlog"
)

type ping struct{ Payload int64 }

var pingRecord = NewRecord[ping]("Ping", 0x01,
	Bind("payload", wire.Long, func(p *ping) *int64 { return &p.Payload }),
)

func (p *ping) Encode() (frame.Message, error) { return pingRecord.Encode(p) }

func testCatalog() *Catalog {
	c := NewCatalog("test/serverbound")
	Register(c, sampleRecord)
	Register(c, pingRecord)
	return c
}

func TestCatalogDecodeByID(t *testing.T) {
	testlog.Start(t)
	c := testCatalog()
	m, err := (&ping{Payload: 77}).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := c.Decode(m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(p, &ping{Payload: 77}) {
		t.Fatalf("unexpected packet %#v", p)
	}
	if name, ok := c.Lookup(0x10); !ok || name != "Sample" {
		t.Fatalf("lookup=%q ok=%v", name, ok)
	}
	if got := c.IDs(); !reflect.DeepEqual(got, []int32{0x01, 0x10}) {
		t.Fatalf("ids=%v", got)
	}
}

func TestCatalogUnknownID(t *testing.T) {
	testlog.Start(t)
	_, err := testCatalog().Decode(frame.Message{ID: 0x55})
	var ud *protocol.UnknownDiscriminantError
	if !errors.As(err, &ud) || ud.Value != int32(0x55) || ud.Union != "test/serverbound" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCatalogPanicsOnDuplicateID(t *testing.T) {
	testlog.Start(t)
	c := testCatalog()
	mustPanic(t, func() {
		Register(c, NewRecord[ping]("Other", 0x01))
	})
}
