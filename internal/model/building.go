package model

import "time"

// Building represents a constructed (or in-progress) building instance
// placed in a territory.
type Building struct {
	ID               string     `json:"id"`
	OwnerID          int64      `json:"owner_id"`
	TerritoryID      string     `json:"territory_id"`
	TemplateID       string     `json:"template_id"`
	Status           string     `json:"status"`
	Level            int        `json:"level"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	BuildStartedAt   time.Time  `json:"build_started_at"`
	BuildCompletedAt *time.Time `json:"build_completed_at,omitempty"`

	// Derived fields (populated by the game layer, not stored).
	RemainingSeconds int `json:"remaining_seconds"`
}

// Building statuses. The stored status column is a cache: the effective
// status is always derived from build_started_at and the template's build
// time, so a finished building reads as active even before the completion
// write lands.
const (
	BuildingStatusConstructing = "constructing"
	BuildingStatusActive       = "active"
)

// EffectiveStatus derives the gameplay status from elapsed wall-clock time.
func (b *Building) EffectiveStatus(buildTime time.Duration, now time.Time) string {
	if b.Status == BuildingStatusActive {
		return BuildingStatusActive
	}
	if now.Sub(b.BuildStartedAt) >= buildTime {
		return BuildingStatusActive
	}
	return BuildingStatusConstructing
}

// Remaining returns the build time left, clamped at zero.
func (b *Building) Remaining(buildTime time.Duration, now time.Time) time.Duration {
	if b.Status == BuildingStatusActive {
		return 0
	}
	left := buildTime - now.Sub(b.BuildStartedAt)
	if left < 0 {
		return 0
	}
	return left
}
