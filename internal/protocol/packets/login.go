package packets

import (
	"github.com/google/uuid"

	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// MaxUsernameLen bounds player names in UTF-16 units.
const MaxUsernameLen = 16

type LoginStart struct {
	Name       string
	PlayerUUID uuid.UUID
}

// SetCompression tells the peer that every later frame uses Threshold.
type SetCompression struct {
	Threshold int32
}

type LoginSuccess struct {
	PlayerUUID uuid.UUID
	Username   string
}

var usernameCodec = wire.BoundedString(MaxUsernameLen)

var (
	LoginStartRecord = schema.NewRecord[LoginStart]("LoginStart", 0x00,
		schema.Bind("name", usernameCodec, func(p *LoginStart) *string { return &p.Name }),
		schema.Bind("player_uuid", wire.UUID, func(p *LoginStart) *uuid.UUID { return &p.PlayerUUID }),
	)

	LoginSuccessRecord = schema.NewRecord[LoginSuccess]("LoginSuccess", 0x02,
		schema.Bind("uuid", wire.UUID, func(p *LoginSuccess) *uuid.UUID { return &p.PlayerUUID }),
		schema.Bind("username", usernameCodec, func(p *LoginSuccess) *string { return &p.Username }),
	)

	SetCompressionRecord = schema.NewRecord[SetCompression]("SetCompression", 0x03,
		schema.Bind("threshold", wire.VarInt, func(p *SetCompression) *int32 { return &p.Threshold }),
	)
)

func (p *LoginStart) Encode() (frame.Message, error)     { return LoginStartRecord.Encode(p) }
func (p *LoginSuccess) Encode() (frame.Message, error)   { return LoginSuccessRecord.Encode(p) }
func (p *SetCompression) Encode() (frame.Message, error) { return SetCompressionRecord.Encode(p) }
