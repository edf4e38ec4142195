package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jusmik/outpost/internal/model"
)

// InsertHistory records a completed exchange. Created in the same
// transaction as the offer's completed transition.
func InsertHistory(ctx context.Context, q DBTX, h *model.TradeHistory) error {
	offered, err := marshalStacks(h.Offered)
	if err != nil {
		return err
	}
	requested, err := marshalStacks(h.Requested)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO trade_history (id, offer_id, seller_id, seller_username, buyer_id, buyer_username,
		                            offered, requested, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.OfferID, h.SellerID, h.SellerUsername, h.BuyerID, h.BuyerUsername,
		offered, requested, h.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting trade history: %w", err)
	}
	return nil
}

const historyColumns = `id, offer_id, seller_id, seller_username, buyer_id, buyer_username,
	offered, requested, completed_at, seller_rating, seller_comment, buyer_rating, buyer_comment`

func scanHistory(row interface{ Scan(...any) error }) (*model.TradeHistory, error) {
	h := &model.TradeHistory{}
	var offerID, sellerComment, buyerComment sql.NullString
	var offered, requested string
	err := row.Scan(&h.ID, &offerID, &h.SellerID, &h.SellerUsername, &h.BuyerID, &h.BuyerUsername,
		&offered, &requested, &h.CompletedAt, &h.SellerRating, &sellerComment, &h.BuyerRating, &buyerComment)
	if err != nil {
		return nil, err
	}
	h.OfferID = offerID.String
	h.SellerComment = sellerComment.String
	h.BuyerComment = buyerComment.String
	if h.Offered, err = unmarshalStacks(offered); err != nil {
		return nil, err
	}
	if h.Requested, err = unmarshalStacks(requested); err != nil {
		return nil, err
	}
	return h, nil
}

// GetHistory returns a trade history row by ID.
func GetHistory(ctx context.Context, q DBTX, id string) (*model.TradeHistory, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM trade_history WHERE id = ?`, id,
	)
	h, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trade history: %w", err)
	}
	return h, nil
}

// ListHistoryByParticipant returns trades where the player was seller or
// buyer, newest first.
func ListHistoryByParticipant(ctx context.Context, q DBTX, playerID int64) ([]model.TradeHistory, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM trade_history
		 WHERE seller_id = ? OR buyer_id = ?
		 ORDER BY completed_at DESC`, playerID, playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing trade history: %w", err)
	}
	defer rows.Close()

	var history []model.TradeHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trade history: %w", err)
		}
		history = append(history, *h)
	}
	return history, rows.Err()
}

// SetSellerRating sets the seller-side rating and comment.
func SetSellerRating(ctx context.Context, q DBTX, id string, rating int, comment string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trade_history SET seller_rating = ?, seller_comment = ? WHERE id = ?`,
		rating, comment, id,
	)
	if err != nil {
		return fmt.Errorf("setting seller rating: %w", err)
	}
	return nil
}

// SetBuyerRating sets the buyer-side rating and comment.
func SetBuyerRating(ctx context.Context, q DBTX, id string, rating int, comment string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trade_history SET buyer_rating = ?, buyer_comment = ? WHERE id = ?`,
		rating, comment, id,
	)
	if err != nil {
		return fmt.Errorf("setting buyer rating: %w", err)
	}
	return nil
}
