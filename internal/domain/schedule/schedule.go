package schedule

import (
	"time"
)

// BannerChange distinguishes the three banner intents a schedule entry can
// carry: key absent means leave the banner alone, a CID means set it, an
// explicit empty value means clear it.
type BannerChange int

const (
	BannerKeep BannerChange = iota
	BannerSet
	BannerClear
)

// AssetSelection is the intended visual state for one hour slot. CIDs are
// opaque content-addressed identifiers compared by exact string equality.
type AssetSelection struct {
	AvatarCID string
	Banner    BannerChange
	BannerCID string // set only when Banner == BannerSet
}

// Schedule maps hour-of-day (0-23) to an AssetSelection. It is loaded once per
// run and never mutated afterwards.
type Schedule map[int]AssetSelection

// Resolve returns the selection for the local hour of now. A missing hour is a
// legitimate "no update this cycle" outcome, reported via ok=false.
func Resolve(s Schedule, now time.Time) (AssetSelection, bool) {
	sel, ok := s[now.Hour()]
	if !ok {
		return AssetSelection{}, false
	}
	return sel, true
}
