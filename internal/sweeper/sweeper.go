// Package sweeper periodically closes auto-close auctions whose end time has
// passed. Each auction is closed in its own transaction so one stuck auction
// cannot block the rest of the sweep.
package sweeper

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"adbidgo/internal/domain"
	auctionsvc "adbidgo/internal/services/auction"
	"adbidgo/internal/store"
)

// sweepActor closes on behalf of the system; admin role passes the close
// authorization for any owner.
var sweepActor = domain.Actor{ID: 0, Role: domain.RoleAdmin}

// Run starts the sweep loop. It returns immediately; the loop stops when ctx
// is cancelled.
func Run(ctx context.Context, db *sql.DB, svc auctionsvc.IAuctionService, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				SweepOnce(ctx, db, svc)
			}
		}
	}()
}

// SweepOnce closes every due auction found at the time of the call.
func SweepOnce(ctx context.Context, db *sql.DB, svc auctionsvc.IAuctionService) {
	auctions := store.NewAuctionStore()
	ids, err := auctions.DueForClose(ctx, db, time.Now().UTC())
	if err != nil {
		zap.L().Error("sweep_query_failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		if _, err := svc.CloseAuction(ctx, id, sweepActor); err != nil {
			// Raced with an explicit close between the query and the lock.
			if errors.Is(err, domain.ErrAuctionNotActive) || errors.Is(err, domain.ErrAuctionNotFound) {
				continue
			}
			zap.L().Error("sweep_close_failed", zap.Int64("auction_id", id), zap.Error(err))
		}
	}
}
