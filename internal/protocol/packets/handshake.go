package packets

import (
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// State selects the protocol state a handshake moves to.
type State int32

const (
	StateStatus State = 1
	StateLogin  State = 2
)

func (s State) String() string {
	switch s {
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	default:
		return "unknown"
	}
}

// MaxServerAddressLen bounds Handshake.ServerAddress in UTF-16 units.
const MaxServerAddressLen = 255

type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       State
}

var stateCodec = wire.Map("State", wire.VarInt,
	func(v int32) (State, error) { return State(v), nil },
	func(s State) int32 { return int32(s) },
)

var HandshakeRecord = schema.NewRecord[Handshake]("Handshake", 0x00,
	schema.Bind("protocol_version", wire.VarInt, func(p *Handshake) *int32 { return &p.ProtocolVersion }),
	schema.Bind("server_address", wire.BoundedString(MaxServerAddressLen), func(p *Handshake) *string { return &p.ServerAddress }),
	schema.Bind("server_port", wire.UShort, func(p *Handshake) *uint16 { return &p.ServerPort }),
	schema.Bind("next_state", stateCodec, func(p *Handshake) *State { return &p.NextState }),
)

func (p *Handshake) Encode() (frame.Message, error) { return HandshakeRecord.Encode(p) }
