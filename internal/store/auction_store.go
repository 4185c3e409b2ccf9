package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adbidgo/internal/domain"
)

const auctionColumns = `id, ad_id, owner_id, start_price, reserve_price, last_price,
       minimum_bid_increment, start_time, end_time,
       anti_snip_window_seconds, anti_snip_extension_seconds,
       auto_close, is_last_price_visible, status, bid_count, winner_id`

type AuctionStore struct{}

func NewAuctionStore() *AuctionStore { return &AuctionStore{} }

// Get loads an auction without locking it.
func (s *AuctionStore) Get(ctx context.Context, q DBTX, id int64) (*domain.Auction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
	return scanAuction(row)
}

// GetForUpdate loads an auction under an exclusive row lock. It must be
// called inside a transaction; the lock serializes concurrent bids on the
// same auction and is held until commit or rollback.
func (s *AuctionStore) GetForUpdate(ctx context.Context, tx DBTX, id int64) (*domain.Auction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE`, id)
	return scanAuction(row)
}

// Update persists the mutable auction fields. Pricing/timing configuration is
// write-once at creation and never touched here.
func (s *AuctionStore) Update(ctx context.Context, q DBTX, a *domain.Auction) error {
	_, err := q.ExecContext(ctx,
		`UPDATE auctions
		    SET last_price = $2, bid_count = $3, end_time = $4,
		        status = $5, winner_id = $6
		  WHERE id = $1`,
		a.ID, a.LastPrice, a.BidCount, a.EndTime, string(a.Status), a.WinnerID)
	if err != nil {
		return fmt.Errorf("update auction %d: %w", a.ID, err)
	}
	return nil
}

// DueForClose returns ids of active auto-close auctions whose end time has
// passed. Each returned auction is closed in its own transaction by the sweep.
func (s *AuctionStore) DueForClose(ctx context.Context, q DBTX, now time.Time) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM auctions
		  WHERE status = 'active' AND auto_close AND end_time <= $1
		  ORDER BY end_time`, now)
	if err != nil {
		return nil, fmt.Errorf("due auctions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanAuction(row *sql.Row) (*domain.Auction, error) {
	var (
		a             domain.Auction
		windowSecs    int64
		extensionSecs int64
		winner        sql.NullInt64
	)
	err := row.Scan(
		&a.ID, &a.AdID, &a.OwnerID,
		&a.StartPrice, &a.ReservePrice, &a.LastPrice,
		&a.MinIncrement, &a.StartTime, &a.EndTime,
		&windowSecs, &extensionSecs,
		&a.AutoClose, &a.LastPriceVisible, &a.Status, &a.BidCount, &winner,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan auction: %w", err)
	}
	a.AntiSnipeWindow = time.Duration(windowSecs) * time.Second
	a.AntiSnipeExtension = time.Duration(extensionSecs) * time.Second
	if winner.Valid {
		a.WinnerID = &winner.Int64
	}
	return &a, nil
}
