package core

import (
	"time"
)

const (
	StatusActive = "active"
	StatusPaused = "paused"
	StatusEnded  = "ended"
)

// IsValidStatus reports whether s is one of the known machine statuses.
func IsValidStatus(s string) bool {
	return s == StatusActive || s == StatusPaused || s == StatusEnded
}

// Attribute is one trait of an NFT metadata attribute list
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MachineMetadata is the display metadata attached to a candy machine
type MachineMetadata struct {
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
}

// CandyMachine is one NFT drop record
// ID is the on-chain candy machine address and never changes
type CandyMachine struct {
	ID             string          `json:"id" gorm:"primaryKey;type:text"`
	Name           string          `json:"name" gorm:"type:text"`
	Symbol         string          `json:"symbol" gorm:"type:text"`
	Price          float64         `json:"price"`
	ItemsAvailable int64           `json:"itemsAvailable"`
	ItemsMinted    int64           `json:"mintedCount"`
	CreatorAddress string          `json:"creatorAddress" gorm:"type:text"`
	GoLiveDate     time.Time       `json:"goLiveDate" gorm:"type:timestamp with time zone"`
	Status         string          `json:"status" gorm:"type:text;default:'active'"`
	Metadata       MachineMetadata `json:"metadata" gorm:"serializer:json;type:json"`
	CDate          time.Time       `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate          time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// IsLive reports whether the drop has reached its go-live date.
// Liveness is always derived, never stored.
func (m CandyMachine) IsLive(now time.Time) bool {
	return !now.Before(m.GoLiveDate)
}

// SoldOut reports whether the supply is exhausted.
func (m CandyMachine) SoldOut() bool {
	return m.ItemsMinted >= m.ItemsAvailable
}
