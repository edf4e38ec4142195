package game

import (
	"errors"
	"fmt"
	"sort"
)

// Lifecycle sentinel errors. All are recoverable by the caller.
var (
	ErrTemplateNotFound      = errors.New("building template not found")
	ErrBuildingNotFound      = errors.New("building not found")
	ErrBuildingNotComplete   = errors.New("building is still under construction")
	ErrOfferNotFound         = errors.New("trade offer not found")
	ErrOfferExpired          = errors.New("trade offer has expired")
	ErrOfferAlreadyCompleted = errors.New("trade offer was already completed")
	ErrOfferCancelled        = errors.New("trade offer was cancelled")
	ErrCannotAcceptOwnOffer  = errors.New("cannot accept your own offer")
	ErrHistoryNotFound       = errors.New("trade history not found")
	ErrNotParticipant        = errors.New("not a participant of this trade")
	ErrNotOwner              = errors.New("not the owner")
)

// InvalidDataError rejects a request before any mutation.
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string {
	return "invalid data: " + e.Reason
}

// InsufficientResourcesError aggregates every short resource line of a
// construction cost list.
type InsufficientResourcesError struct {
	Missing map[string]int
}

func (e *InsufficientResourcesError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for id := range e.Missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	msg := "insufficient resources:"
	for _, id := range ids {
		msg += fmt.Sprintf(" %s (missing %d)", id, e.Missing[id])
	}
	return msg
}

// InsufficientItemsError reports the first short line of a trade side.
type InsufficientItemsError struct {
	ItemID   string
	Required int
	Owned    int
}

func (e *InsufficientItemsError) Error() string {
	return fmt.Sprintf("insufficient items: %s requires %d, owned %d", e.ItemID, e.Required, e.Owned)
}

// MaxBuildingsError rejects construction past the per-territory cap.
type MaxBuildingsError struct {
	TemplateID string
	Max        int
}

func (e *MaxBuildingsError) Error() string {
	return fmt.Sprintf("maximum of %d %s buildings reached in this territory", e.Max, e.TemplateID)
}

// CannotUpgradeError rejects an upgrade with the reason.
type CannotUpgradeError struct {
	Reason string
}

func (e *CannotUpgradeError) Error() string {
	return "cannot upgrade: " + e.Reason
}
