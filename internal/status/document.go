package status

import (
	"encoding/json"
	"fmt"

	"github.com/danmuck/mcwire/internal/protocol/packets"
)

// Document is the JSON body of a StatusResponse.
type Document struct {
	Version     Version     `json:"version"`
	Players     Players     `json:"players"`
	Description Description `json:"description"`
	Favicon     string      `json:"favicon,omitempty"`
}

type Version struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type Players struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Description struct {
	Text string `json:"text"`
}

// Response renders d for a client that spoke protocolVersion. A zero
// Version.Protocol echoes the client's version.
func (d Document) Response(protocolVersion int32) (*packets.StatusResponse, error) {
	if d.Version.Protocol == 0 {
		d.Version.Protocol = protocolVersion
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("status: encode document: %w", err)
	}
	return &packets.StatusResponse{JSON: string(b)}, nil
}
