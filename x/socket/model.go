package socket

import (
	"encoding/json"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
)

// request is the inbound frame shape. Only Type is required; the remaining
// fields are read per message type.
type request struct {
	Type         string             `json:"type"`
	Payload      json.RawMessage    `json:"payload,omitempty"`
	CandyMachine *core.CandyMachine `json:"candyMachine,omitempty"`
	ID           string             `json:"id,omitempty"`
}

// mintTarget resolves the machine id of a mint notification, accepting both
// the top-level id field and a {"id": ...} payload.
func (r request) mintTarget() string {
	if r.ID != "" {
		return r.ID
	}
	if len(r.Payload) == 0 {
		return ""
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(r.Payload, &payload); err != nil {
		return ""
	}
	return payload.ID
}
