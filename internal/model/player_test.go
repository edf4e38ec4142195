package model

import (
	"testing"
	"time"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role    string
		minimum string
		want    bool
	}{
		{RoleAdmin, RolePlayer, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleModerator, RoleAdmin, false},
		{RoleModerator, RolePlayer, true},
		{RolePlayer, RoleModerator, false},
		{"unknown", RolePlayer, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.want)
		}
	}
}

func TestBuildingEffectiveStatus(t *testing.T) {
	now := time.Now()
	b := &Building{
		Status:         BuildingStatusConstructing,
		BuildStartedAt: now.Add(-30 * time.Second),
	}

	if got := b.EffectiveStatus(60*time.Second, now); got != BuildingStatusConstructing {
		t.Errorf("expected constructing mid-build, got %q", got)
	}
	if got := b.EffectiveStatus(30*time.Second, now); got != BuildingStatusActive {
		t.Errorf("expected active at exactly build time, got %q", got)
	}
	if got := b.EffectiveStatus(10*time.Second, now); got != BuildingStatusActive {
		t.Errorf("expected active past build time, got %q", got)
	}

	// Persisted active wins regardless of timestamps.
	b.Status = BuildingStatusActive
	if got := b.EffectiveStatus(time.Hour, now); got != BuildingStatusActive {
		t.Errorf("expected active for persisted status, got %q", got)
	}
}

func TestBuildingRemaining(t *testing.T) {
	now := time.Now()
	b := &Building{
		Status:         BuildingStatusConstructing,
		BuildStartedAt: now.Add(-40 * time.Second),
	}

	if got := b.Remaining(60*time.Second, now); got != 20*time.Second {
		t.Errorf("expected 20s remaining, got %v", got)
	}
	if got := b.Remaining(30*time.Second, now); got != 0 {
		t.Errorf("expected 0 remaining past build time, got %v", got)
	}
}

func TestOfferExpired(t *testing.T) {
	now := time.Now()
	o := &TradeOffer{ExpiresAt: now.Add(time.Hour)}
	if o.Expired(now) {
		t.Error("offer should not be expired before deadline")
	}
	if !o.Expired(now.Add(time.Hour + time.Second)) {
		t.Error("offer should be expired past deadline")
	}
}
