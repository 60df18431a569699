package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Tier is the entry tier a photo is tagged with at capture time.
type Tier string

const (
	TierGeneral Tier = "general"
	TierVIP     Tier = "vip"
)

// Tiers lists every valid entry tier.
var Tiers = []Tier{TierGeneral, TierVIP}

func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid entry tier %q", s)
}

// Photo is one metadata row for a stored attendee photo. The price is
// snapshotted from the price table at upload time and never updated.
// MirrorURL/MirrorPath are null when mirroring failed or is disabled.
type Photo struct {
	ID             int64
	Tier           Tier
	Filename       string
	PrimaryLocator string
	MirrorURL      sql.NullString
	MirrorPath     sql.NullString
	Price          float64
	CapturedAt     time.Time
}

// PriceEntry is the current price for one entry tier.
type PriceEntry struct {
	Tier      Tier
	Amount    float64
	UpdatedAt time.Time
}

// TierStats is the count/revenue aggregate for one statistics bucket.
type TierStats struct {
	Count int64   `json:"cantidad"`
	Total float64 `json:"total"`
}

// Stats groups the per-tier, overall and same-day aggregates.
type Stats struct {
	General TierStats `json:"general"`
	VIP     TierStats `json:"vip"`
	Total   TierStats `json:"total"`
	Today   TierStats `json:"hoy"`
}
