package auction

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"adbidgo/internal/audit"
	"adbidgo/internal/authz"
	"adbidgo/internal/domain"
	"adbidgo/internal/events"
	"adbidgo/internal/store"
)

type AuctionDTO struct {
	ID           int64     `json:"id"`
	AdID         int64     `json:"ad_id"`
	StartPrice   string    `json:"start_price" example:"1000.00"`
	ReservePrice *string   `json:"reserve_price,omitempty"`
	LastPrice    *string   `json:"last_price,omitempty"`
	MinIncrement string    `json:"minimum_bid_increment"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status" example:"active"`
	BidCount     int       `json:"bid_count"`
	WinnerID     *int64    `json:"winner_id,omitempty"`
}

type BidDTO struct {
	ID          int64      `json:"id"`
	AuctionID   int64      `json:"auction_id"`
	UserID      int64      `json:"user_id"`
	Price       string     `json:"price" example:"1100.00"`
	Comment     string     `json:"comment,omitempty"`
	Status      string     `json:"status" example:"active"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PlaceBidResult is returned from PlaceBid: the created bid plus the
// anti-snipe outcome.
type PlaceBidResult struct {
	Bid       BidDTO           `json:"bid"`
	AntiSnipe domain.AntiSnipe `json:"anti_snipe"`
}

type IAuctionService interface {
	PlaceBid(ctx context.Context, auctionID int64, actor domain.Actor, price decimal.Decimal, comment string) (*PlaceBidResult, error)
	WithdrawBid(ctx context.Context, auctionID, bidID int64, actor domain.Actor) error
	CloseAuction(ctx context.Context, auctionID int64, actor domain.Actor) (*domain.CloseOutcome, error)
	CancelAuction(ctx context.Context, auctionID int64, actor domain.Actor) error
	GetAuction(ctx context.Context, auctionID int64, actor domain.Actor) (*AuctionDTO, error)
	ListBids(ctx context.Context, auctionID int64, actor domain.Actor) ([]BidDTO, error)
	GetBid(ctx context.Context, auctionID, bidID int64, actor domain.Actor) (*BidDTO, error)
	MinimumNextBid(ctx context.Context, auctionID int64) (decimal.Decimal, error)
}

type auctionService struct {
	db       *sql.DB
	auctions *store.AuctionStore
	bids     *store.BidStore
	pub      *events.Publisher
	audit    *audit.Recorder
	sanitize *bluemonday.Policy
	now      func() time.Time
}

func NewAuctionService(db *sql.DB, pub *events.Publisher, rec *audit.Recorder) IAuctionService {
	return &auctionService{
		db:       db,
		auctions: store.NewAuctionStore(),
		bids:     store.NewBidStore(),
		pub:      pub,
		audit:    rec,
		sanitize: bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// PlaceBid validates and commits a new bid under an exclusive row lock on the
// auction. Validation runs after the lock is acquired, so a bid that lost a
// race sees the winner's last_price and is rejected rather than accepted at a
// stale price. Any failure rolls the whole transaction back.
func (svc *auctionService) PlaceBid(ctx context.Context, auctionID int64, actor domain.Actor, price decimal.Decimal, comment string) (*PlaceBidResult, error) {
	now := svc.now().UTC()

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bid tx: %w", err)
	}
	defer tx.Rollback()

	a, err := svc.auctions.GetForUpdate(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}

	cmd := domain.PlaceCommand{
		UserID:  actor.ID,
		Price:   price,
		Comment: svc.sanitize.Sanitize(comment),
	}
	next, bid, snipe, err := domain.ApplyBid(*a, cmd, now)
	if err != nil {
		return nil, err
	}

	if err := svc.bids.Insert(ctx, tx, &bid); err != nil {
		svc.logBidFailure(auctionID, actor.ID, price, err)
		return nil, err
	}
	if err := svc.auctions.Update(ctx, tx, &next); err != nil {
		svc.logBidFailure(auctionID, actor.ID, price, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		svc.logBidFailure(auctionID, actor.ID, price, err)
		return nil, fmt.Errorf("commit bid: %w", err)
	}

	svc.pub.Publish(ctx, auctionID, events.EventBid, events.BidBody{
		BidID:     bid.ID,
		UserID:    bid.UserID,
		Price:     bid.Price.StringFixed(2),
		BidCount:  next.BidCount,
		PlacedAt:  bid.CreatedAt,
		Extended:  snipe.Triggered,
		NewEndsAt: snipe.NewEndTime,
	})
	if snipe.Triggered {
		svc.pub.Publish(ctx, auctionID, events.EventExtended, snipe)
	}
	svc.audit.Record(ctx, audit.Entry{
		Action:    "bid.place",
		ActorID:   actor.ID,
		AuctionID: auctionID,
		BidID:     bid.ID,
		Price:     bid.Price.StringFixed(2),
	})
	zap.L().Info("bid_placed",
		zap.Int64("auction_id", auctionID),
		zap.Int64("bid_id", bid.ID),
		zap.Int64("user_id", actor.ID),
		zap.String("price", bid.Price.StringFixed(2)),
		zap.Bool("extended", snipe.Triggered),
	)

	return &PlaceBidResult{Bid: toBidDTO(bid), AntiSnipe: snipe}, nil
}

// WithdrawBid retracts a bid under the withdrawal restrictions. It never
// touches last_price or bid_count, so the auction row lock is not taken; the
// highest bid is re-read inside the same transaction before commit.
func (svc *auctionService) WithdrawBid(ctx context.Context, auctionID, bidID int64, actor domain.Actor) error {
	now := svc.now().UTC()

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin withdraw tx: %w", err)
	}
	defer tx.Rollback()

	bid, err := svc.bids.Get(ctx, tx, auctionID, bidID)
	if err != nil {
		return err
	}
	a, err := svc.auctions.Get(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	highest, err := svc.bids.HighestActive(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if err := domain.CheckWithdraw(*bid, *a, highest, actor, now); err != nil {
		return err
	}

	if err := svc.bids.MarkWithdrawn(ctx, tx, bidID, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit withdraw: %w", err)
	}

	svc.audit.Record(ctx, audit.Entry{
		Action:    "bid.withdraw",
		ActorID:   actor.ID,
		AuctionID: auctionID,
		BidID:     bidID,
	})
	zap.L().Info("bid_withdrawn",
		zap.Int64("auction_id", auctionID),
		zap.Int64("bid_id", bidID),
		zap.Int64("user_id", actor.ID),
	)
	return nil
}

// CloseAuction determines the winner among active bids and finalizes the
// auction. When a reserve price is set and unmet, the auction closes without
// a winner.
func (svc *auctionService) CloseAuction(ctx context.Context, auctionID int64, actor domain.Actor) (*domain.CloseOutcome, error) {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin close tx: %w", err)
	}
	defer tx.Rollback()

	a, err := svc.auctions.GetForUpdate(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.ActionCloseAuction, authz.Resource{AuctionOwnerID: a.OwnerID}) {
		return nil, domain.ErrForbidden
	}

	highest, err := svc.bids.HighestActive(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}
	next, outcome, err := domain.DecideClose(*a, highest)
	if err != nil {
		return nil, err
	}

	if err := svc.auctions.Update(ctx, tx, &next); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit close: %w", err)
	}

	svc.pub.Publish(ctx, auctionID, events.EventClosed, events.CloseBody{
		WinnerID:   outcome.WinnerID,
		ReserveMet: outcome.ReserveMet,
	})
	svc.audit.Record(ctx, audit.Entry{
		Action:    "auction.close",
		ActorID:   actor.ID,
		AuctionID: auctionID,
		Detail:    outcome.Message,
	})
	zap.L().Info("auction_closed",
		zap.Int64("auction_id", auctionID),
		zap.Bool("reserve_met", outcome.ReserveMet),
		zap.Any("winner_id", outcome.WinnerID),
	)
	return &outcome, nil
}

// CancelAuction cancels a still-active auction. Non-admins are blocked once
// any bid has been placed.
func (svc *auctionService) CancelAuction(ctx context.Context, auctionID int64, actor domain.Actor) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback()

	a, err := svc.auctions.GetForUpdate(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if !authz.Allowed(actor, authz.ActionCancelAuction, authz.Resource{AuctionOwnerID: a.OwnerID}) {
		return domain.ErrForbidden
	}
	if err := domain.CheckCancel(*a, actor); err != nil {
		return err
	}

	a.Status = domain.StatusCancelled
	if err := svc.auctions.Update(ctx, tx, a); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}

	svc.pub.Publish(ctx, auctionID, events.EventCancelled, nil)
	svc.audit.Record(ctx, audit.Entry{
		Action:    "auction.cancel",
		ActorID:   actor.ID,
		AuctionID: auctionID,
	})
	zap.L().Info("auction_cancelled", zap.Int64("auction_id", auctionID), zap.Int64("actor_id", actor.ID))
	return nil
}

func (svc *auctionService) GetAuction(ctx context.Context, auctionID int64, actor domain.Actor) (*AuctionDTO, error) {
	a, err := svc.auctions.Get(ctx, svc.db, auctionID)
	if err != nil {
		return nil, err
	}
	dto := toAuctionDTO(*a)

	// last_price is hidden from outsiders unless the auction exposes it;
	// reserve_price is never shown to outsiders.
	privileged := authz.Allowed(actor, authz.ActionViewLastPrice, authz.Resource{AuctionOwnerID: a.OwnerID})
	if !privileged {
		dto.ReservePrice = nil
		if !a.LastPriceVisible {
			dto.LastPrice = nil
		}
	}
	return &dto, nil
}

func (svc *auctionService) ListBids(ctx context.Context, auctionID int64, actor domain.Actor) ([]BidDTO, error) {
	a, err := svc.auctions.Get(ctx, svc.db, auctionID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.ActionViewBids, authz.Resource{AuctionOwnerID: a.OwnerID}) {
		return nil, domain.ErrForbidden
	}
	bids, err := svc.bids.ListActive(ctx, svc.db, auctionID)
	if err != nil {
		return nil, err
	}
	return lo.Map(bids, func(b domain.Bid, _ int) BidDTO { return toBidDTO(b) }), nil
}

func (svc *auctionService) GetBid(ctx context.Context, auctionID, bidID int64, actor domain.Actor) (*BidDTO, error) {
	a, err := svc.auctions.Get(ctx, svc.db, auctionID)
	if err != nil {
		return nil, err
	}
	b, err := svc.bids.Get(ctx, svc.db, auctionID, bidID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.ActionViewBid, authz.Resource{AuctionOwnerID: a.OwnerID, BidOwnerID: b.UserID}) {
		return nil, domain.ErrForbidden
	}
	dto := toBidDTO(*b)
	return &dto, nil
}

func (svc *auctionService) MinimumNextBid(ctx context.Context, auctionID int64) (decimal.Decimal, error) {
	a, err := svc.auctions.Get(ctx, svc.db, auctionID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.MinimumNextBid(*a), nil
}

func (svc *auctionService) logBidFailure(auctionID, userID int64, price decimal.Decimal, err error) {
	zap.L().Error("bid_persist_failed",
		zap.Int64("auction_id", auctionID),
		zap.Int64("user_id", userID),
		zap.String("price", price.StringFixed(2)),
		zap.Error(err),
	)
}

func toBidDTO(b domain.Bid) BidDTO {
	return BidDTO{
		ID:          b.ID,
		AuctionID:   b.AuctionID,
		UserID:      b.UserID,
		Price:       b.Price.StringFixed(2),
		Comment:     b.Comment,
		Status:      string(b.Status),
		WithdrawnAt: b.WithdrawnAt,
		CreatedAt:   b.CreatedAt,
	}
}

func toAuctionDTO(a domain.Auction) AuctionDTO {
	dto := AuctionDTO{
		ID:           a.ID,
		AdID:         a.AdID,
		StartPrice:   a.StartPrice.StringFixed(2),
		MinIncrement: a.MinIncrement.StringFixed(2),
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Status:       string(a.Status),
		BidCount:     a.BidCount,
		WinnerID:     a.WinnerID,
	}
	if a.ReservePrice.Valid {
		dto.ReservePrice = lo.ToPtr(a.ReservePrice.Decimal.StringFixed(2))
	}
	if a.LastPrice.Valid {
		dto.LastPrice = lo.ToPtr(a.LastPrice.Decimal.StringFixed(2))
	}
	return dto
}
