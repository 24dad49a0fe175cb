package schema

import (
	"fmt"
	"sort"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
)

// Catalog maps message ids to packet decoders for one protocol state and
// direction. It is the tagged union over whole messages, keyed by id.
type Catalog struct {
	name    string
	entries map[int32]catalogEntry
}

type catalogEntry struct {
	name   string
	decode func(frame.Message) (Packet, error)
}

func NewCatalog(name string) *Catalog {
	return &Catalog{name: name, entries: make(map[int32]catalogEntry)}
}

// Register adds r to c. It panics if the id is already taken.
func Register[P any, PP interface {
	*P
	Packet
}](c *Catalog, r *Record[P]) {
	if prev, dup := c.entries[r.ID()]; dup {
		panic(fmt.Sprintf("schema: catalog %s id 0x%02x used by %s and %s", c.name, r.ID(), prev.name, r.Name()))
	}
	c.entries[r.ID()] = catalogEntry{
		name: r.Name(),
		decode: func(m frame.Message) (Packet, error) {
			p, err := r.Decode(m)
			if err != nil {
				return nil, err
			}
			return PP(p), nil
		},
	}
}

func (c *Catalog) Name() string { return c.name }

// Lookup returns the packet name registered for id.
func (c *Catalog) Lookup(id int32) (string, bool) {
	e, ok := c.entries[id]
	return e.name, ok
}

// IDs returns the registered ids in ascending order.
func (c *Catalog) IDs() []int32 {
	out := make([]int32, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decode parses m with the decoder registered for its id.
func (c *Catalog) Decode(m frame.Message) (Packet, error) {
	e, ok := c.entries[m.ID]
	if !ok {
		return nil, &protocol.UnknownDiscriminantError{Union: c.name, Value: m.ID}
	}
	return e.decode(m)
}
