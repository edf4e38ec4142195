package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jusmik/outpost/internal/model"
)

// InsertOffer inserts a new trade offer.
func InsertOffer(ctx context.Context, q DBTX, o *model.TradeOffer) error {
	offering, err := marshalStacks(o.Offering)
	if err != nil {
		return err
	}
	requesting, err := marshalStacks(o.Requesting)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO trade_offers (id, owner_id, offering, requesting, status, message, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OwnerID, offering, requesting, o.Status, o.Message, o.CreatedAt, o.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("inserting offer: %w", err)
	}
	return nil
}

const offerColumns = `o.id, o.owner_id, o.offering, o.requesting, o.status, o.message,
	o.created_at, o.expires_at, o.completed_at, o.completed_by, p.username`

func scanOffer(row interface{ Scan(...any) error }) (*model.TradeOffer, error) {
	o := &model.TradeOffer{}
	var offering, requesting string
	var message sql.NullString
	err := row.Scan(&o.ID, &o.OwnerID, &offering, &requesting, &o.Status, &message,
		&o.CreatedAt, &o.ExpiresAt, &o.CompletedAt, &o.CompletedBy, &o.OwnerUsername)
	if err != nil {
		return nil, err
	}
	o.Message = message.String
	if o.Offering, err = unmarshalStacks(offering); err != nil {
		return nil, err
	}
	if o.Requesting, err = unmarshalStacks(requesting); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOffer returns a trade offer by ID.
func GetOffer(ctx context.Context, q DBTX, id string) (*model.TradeOffer, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+offerColumns+`
		 FROM trade_offers o JOIN players p ON p.id = o.owner_id
		 WHERE o.id = ?`, id,
	)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting offer: %w", err)
	}
	return o, nil
}

// ListAvailableOffers returns active, unexpired offers excluding the
// viewer's own.
func ListAvailableOffers(ctx context.Context, q DBTX, viewerID int64, now time.Time) ([]model.TradeOffer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+offerColumns+`
		 FROM trade_offers o JOIN players p ON p.id = o.owner_id
		 WHERE o.status = ? AND o.expires_at > ? AND o.owner_id != ?
		 ORDER BY o.created_at DESC`,
		model.OfferStatusActive, now, viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing available offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

// ListOffersByOwner returns all of an owner's offers regardless of status.
func ListOffersByOwner(ctx context.Context, q DBTX, ownerID int64) ([]model.TradeOffer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+offerColumns+`
		 FROM trade_offers o JOIN players p ON p.id = o.owner_id
		 WHERE o.owner_id = ?
		 ORDER BY o.created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing owner offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

func scanOffers(rows *sql.Rows) ([]model.TradeOffer, error) {
	var offers []model.TradeOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// CompleteOfferCAS flips an offer from active to completed. Returns false
// if the offer was no longer active (a concurrent accept won, or the offer
// was cancelled or expired meanwhile).
func CompleteOfferCAS(ctx context.Context, q DBTX, id string, completedAt time.Time, completedBy int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE trade_offers SET status = ?, completed_at = ?, completed_by = ?
		 WHERE id = ? AND status = ?`,
		model.OfferStatusCompleted, completedAt, completedBy, id, model.OfferStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("completing offer: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("completing offer: %w", err)
	}
	return n == 1, nil
}

// CancelOfferCAS flips an offer from active to cancelled. Returns false if
// the offer was no longer active.
func CancelOfferCAS(ctx context.Context, q DBTX, id string) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE trade_offers SET status = ? WHERE id = ? AND status = ?`,
		model.OfferStatusCancelled, id, model.OfferStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("cancelling offer: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancelling offer: %w", err)
	}
	return n == 1, nil
}

// ExpireOffer flips an active offer to expired. Expiry is lazy: readers
// call this when they observe a past deadline.
func ExpireOffer(ctx context.Context, q DBTX, id string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trade_offers SET status = ? WHERE id = ? AND status = ?`,
		model.OfferStatusExpired, id, model.OfferStatusActive,
	)
	if err != nil {
		return fmt.Errorf("expiring offer: %w", err)
	}
	return nil
}

// ExpireDueOffers flips every active offer whose deadline has passed.
// Listing endpoints call this so stale rows read as expired without a
// background sweep.
func ExpireDueOffers(ctx context.Context, q DBTX, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trade_offers SET status = ? WHERE status = ? AND expires_at <= ?`,
		model.OfferStatusExpired, model.OfferStatusActive, now,
	)
	if err != nil {
		return fmt.Errorf("expiring due offers: %w", err)
	}
	return nil
}
