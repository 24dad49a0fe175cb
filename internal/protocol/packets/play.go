package packets

import (
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// PluginMessage is a channel-addressed blob; Data runs to the end of the
// payload.
type PluginMessage struct {
	Channel string
	Data    []byte
}

// EntityLook rotates an entity. Angles are degrees, sent in 1/256 turns.
type EntityLook struct {
	EntityID int32
	Yaw      float32
	Pitch    float32
	OnGround bool
}

// ClientCommand reports a player action against an entity.
type ClientCommand struct {
	EntityID int32
	Action   PlayerAction
}

// PlayerAction is one of the variant structs below.
type PlayerAction interface {
	playerAction()
}

type StartSneaking struct{}
type StopSneaking struct{}
type LeaveBed struct{}
type StartSprinting struct{}
type StopSprinting struct{}

// StartHorseJump carries the jump strength, 0 through 100.
type StartHorseJump struct {
	JumpBoost int32
}

func (*StartSneaking) playerAction()  {}
func (*StopSneaking) playerAction()   {}
func (*LeaveBed) playerAction()       {}
func (*StartSprinting) playerAction() {}
func (*StopSprinting) playerAction()  {}
func (*StartHorseJump) playerAction() {}

var PlayerActionUnion = schema.NewUnion[PlayerAction]("PlayerAction", wire.VarInt,
	schema.Variant[PlayerAction, int32, StartSneaking](0, "start_sneaking"),
	schema.Variant[PlayerAction, int32, StopSneaking](1, "stop_sneaking"),
	schema.Variant[PlayerAction, int32, LeaveBed](2, "leave_bed"),
	schema.Variant[PlayerAction, int32, StartSprinting](3, "start_sprinting"),
	schema.Variant[PlayerAction, int32, StopSprinting](4, "stop_sprinting"),
	schema.Variant[PlayerAction](int32(5), "start_horse_jump",
		schema.Bind("jump_boost", wire.VarInt, func(p *StartHorseJump) *int32 { return &p.JumpBoost }),
	),
)

var (
	PluginMessageRecord = schema.NewRecord[PluginMessage]("PluginMessage", 0x0D,
		schema.Bind("channel", wire.String, func(p *PluginMessage) *string { return &p.Channel }),
		schema.Bind("data", wire.RemainingBytes, func(p *PluginMessage) *[]byte { return &p.Data }),
	)

	EntityLookRecord = schema.NewRecord[EntityLook]("EntityLook", 0x2D,
		schema.Bind("entity_id", wire.VarInt, func(p *EntityLook) *int32 { return &p.EntityID }),
		schema.Bind("yaw", wire.Angle, func(p *EntityLook) *float32 { return &p.Yaw }),
		schema.Bind("pitch", wire.Angle, func(p *EntityLook) *float32 { return &p.Pitch }),
		schema.Bind("on_ground", wire.Bool, func(p *EntityLook) *bool { return &p.OnGround }),
	)

	ClientCommandRecord = schema.NewRecord[ClientCommand]("ClientCommand", 0x1E,
		schema.Bind("entity_id", wire.VarInt, func(p *ClientCommand) *int32 { return &p.EntityID }),
		schema.Bind("action", PlayerActionUnion.Codec(), func(p *ClientCommand) *PlayerAction { return &p.Action }),
	)
)

func (p *PluginMessage) Encode() (frame.Message, error) { return PluginMessageRecord.Encode(p) }
func (p *EntityLook) Encode() (frame.Message, error)    { return EntityLookRecord.Encode(p) }
func (p *ClientCommand) Encode() (frame.Message, error) { return ClientCommandRecord.Encode(p) }
