package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adbidgo/internal/domain"
)

var auctionCols = []string{
	"id", "ad_id", "owner_id", "start_price", "reserve_price", "last_price",
	"minimum_bid_increment", "start_time", "end_time",
	"anti_snip_window_seconds", "anti_snip_extension_seconds",
	"auto_close", "is_last_price_visible", "status", "bid_count", "winner_id",
}

func auctionRow(t time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(auctionCols).AddRow(
		int64(1), int64(10), int64(7), "1000", "1500", "1200",
		"100", t.Add(-time.Hour), t.Add(time.Hour),
		int64(300), int64(300),
		true, true, "active", 3, nil,
	)
}

func TestAuctionStore_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM auctions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(auctionRow(now))

	s := NewAuctionStore()
	a, err := s.GetForUpdate(context.Background(), db, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.True(t, a.StartPrice.Equal(decimal.NewFromInt(1000)))
	assert.True(t, a.ReservePrice.Valid)
	assert.True(t, a.LastPrice.Decimal.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 300*time.Second, a.AntiSnipeWindow)
	assert.Equal(t, domain.StatusActive, a.Status)
	assert.Equal(t, 3, a.BidCount)
	assert.Nil(t, a.WinnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM auctions WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(auctionCols))

	_, err = NewAuctionStore().Get(context.Background(), db, 42)
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionStore_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	winner := int64(5)
	a := &domain.Auction{
		ID:        1,
		LastPrice: decimal.NewNullDecimal(decimal.NewFromInt(1200)),
		BidCount:  4,
		EndTime:   now,
		Status:    domain.StatusClosed,
		WinnerID:  &winner,
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE auctions`)).
		WithArgs(int64(1), a.LastPrice, 4, now, "closed", &winner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewAuctionStore().Update(context.Background(), db, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionStore_DueForClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id FROM auctions`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(9)))

	ids, err := NewAuctionStore().DueForClose(context.Background(), db, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, ids)
}
