package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adbidgo/internal/domain"
)

const bidColumns = `id, auction_id, user_id, price, comment, status, withdrawn_at, created_at`

type BidStore struct{}

func NewBidStore() *BidStore { return &BidStore{} }

// Insert appends a bid to the ledger and fills in its assigned id.
func (s *BidStore) Insert(ctx context.Context, q DBTX, b *domain.Bid) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO bids (auction_id, user_id, price, comment, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		b.AuctionID, b.UserID, b.Price, b.Comment, string(b.Status), b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// Get loads a single bid scoped to its auction.
func (s *BidStore) Get(ctx context.Context, q DBTX, auctionID, bidID int64) (*domain.Bid, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1 AND auction_id = $2`, bidID, auctionID)
	return scanBid(row)
}

// ListActive returns the active bids of an auction, highest first; ties go to
// the earlier bid.
func (s *BidStore) ListActive(ctx context.Context, q DBTX, auctionID int64) ([]domain.Bid, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids
		  WHERE auction_id = $1 AND status = 'active'
		  ORDER BY price DESC, created_at ASC`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		b, err := scanBidRows(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// HighestActive returns the current highest active bid, or nil when the
// auction has no active bids.
func (s *BidStore) HighestActive(ctx context.Context, q DBTX, auctionID int64) (*domain.Bid, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids
		  WHERE auction_id = $1 AND status = 'active'
		  ORDER BY price DESC, created_at ASC
		  LIMIT 1`, auctionID)
	b, err := scanBid(row)
	if errors.Is(err, domain.ErrBidNotFound) {
		return nil, nil
	}
	return b, err
}

// MarkWithdrawn flips a bid to withdrawn. The price column is never updated.
func (s *BidStore) MarkWithdrawn(ctx context.Context, q DBTX, bidID int64, at time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE bids SET status = 'withdrawn', withdrawn_at = $2
		  WHERE id = $1 AND status = 'active'`, bidID, at)
	if err != nil {
		return fmt.Errorf("withdraw bid %d: %w", bidID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrBidAlreadyWithdrawn
	}
	return nil
}

func scanBid(row *sql.Row) (*domain.Bid, error) {
	var (
		b         domain.Bid
		withdrawn sql.NullTime
	)
	err := row.Scan(&b.ID, &b.AuctionID, &b.UserID, &b.Price, &b.Comment,
		&b.Status, &withdrawn, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBidNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bid: %w", err)
	}
	if withdrawn.Valid {
		b.WithdrawnAt = &withdrawn.Time
	}
	return &b, nil
}

func scanBidRows(rows *sql.Rows) (*domain.Bid, error) {
	var (
		b         domain.Bid
		withdrawn sql.NullTime
	)
	err := rows.Scan(&b.ID, &b.AuctionID, &b.UserID, &b.Price, &b.Comment,
		&b.Status, &withdrawn, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan bid: %w", err)
	}
	if withdrawn.Valid {
		b.WithdrawnAt = &withdrawn.Time
	}
	return &b, nil
}
