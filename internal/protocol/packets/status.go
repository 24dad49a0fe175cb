package packets

import (
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/wire"
)

type StatusRequest struct{}

// StatusResponse carries the server status document as raw JSON text.
type StatusResponse struct {
	JSON string
}

type PingRequest struct {
	Payload int64
}

type PongResponse struct {
	Payload int64
}

var (
	StatusRequestRecord = schema.NewRecord[StatusRequest]("StatusRequest", 0x00)

	StatusResponseRecord = schema.NewRecord[StatusResponse]("StatusResponse", 0x00,
		schema.Bind("json_response", wire.String, func(p *StatusResponse) *string { return &p.JSON }),
	)

	PingRequestRecord = schema.NewRecord[PingRequest]("PingRequest", 0x01,
		schema.Bind("payload", wire.Long, func(p *PingRequest) *int64 { return &p.Payload }),
	)

	PongResponseRecord = schema.NewRecord[PongResponse]("PongResponse", 0x01,
		schema.Bind("payload", wire.Long, func(p *PongResponse) *int64 { return &p.Payload }),
	)
)

func (p *StatusRequest) Encode() (frame.Message, error)  { return StatusRequestRecord.Encode(p) }
func (p *StatusResponse) Encode() (frame.Message, error) { return StatusResponseRecord.Encode(p) }
func (p *PingRequest) Encode() (frame.Message, error)    { return PingRequestRecord.Encode(p) }
func (p *PongResponse) Encode() (frame.Message, error)   { return PongResponseRecord.Encode(p) }
