package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// The functions in this file are pure: they take current state plus a command
// and return next state plus events. Persistence and locking live in the
// service layer, so every rule is testable without a database.

// MinimumNextBid is the lowest price a new bid must meet or exceed.
func MinimumNextBid(a Auction) decimal.Decimal {
	if a.LastPrice.Valid {
		return a.LastPrice.Decimal.Add(a.MinIncrement)
	}
	return a.StartPrice
}

// HasEnded reports whether now is at or past the auction's end time.
func HasEnded(a Auction, now time.Time) bool {
	return !now.Before(a.EndTime)
}

// InBiddingWindow reports whether now falls in [start_time, end_time).
func InBiddingWindow(a Auction, now time.Time) bool {
	return !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// ShouldExtend reports whether a bid landing at now falls inside the trailing
// anti-snipe window.
func ShouldExtend(a Auction, now time.Time) bool {
	return !now.Before(a.EndTime.Add(-a.AntiSnipeWindow))
}

// ExtendedEnd is the new end time after an anti-snipe extension.
func ExtendedEnd(a Auction, now time.Time) time.Time {
	return now.Add(a.AntiSnipeExtension)
}

// PlaceCommand is the input for bid placement.
type PlaceCommand struct {
	UserID  int64
	Price   decimal.Decimal
	Comment string
}

// AntiSnipe describes whether a placement extended the auction. NewEndTime is
// nil when no extension happened.
type AntiSnipe struct {
	Triggered        bool       `json:"triggered"`
	NewEndTime       *time.Time `json:"new_end_time,omitempty"`
	ExtensionSeconds int        `json:"extension_seconds,omitempty"`
}

// ApplyBid validates cmd against a and returns the next auction state, the
// bid to insert, and the anti-snipe outcome. On error the auction is returned
// unchanged and nothing must be persisted.
//
// A qualifying late bid extends end_time every time; there is no cap on
// repeated extensions.
func ApplyBid(a Auction, cmd PlaceCommand, now time.Time) (Auction, Bid, AntiSnipe, error) {
	if a.Status != StatusActive || !InBiddingWindow(a, now) {
		return a, Bid{}, AntiSnipe{}, ErrAuctionNotActive
	}
	min := MinimumNextBid(a)
	if cmd.Price.LessThan(min) {
		return a, Bid{}, AntiSnipe{}, &BidTooLowError{Minimum: min}
	}

	bid := Bid{
		AuctionID: a.ID,
		UserID:    cmd.UserID,
		Price:     cmd.Price,
		Comment:   cmd.Comment,
		Status:    BidActive,
		CreatedAt: now,
	}
	a.LastPrice = decimal.NewNullDecimal(cmd.Price)
	a.BidCount++

	var snipe AntiSnipe
	if ShouldExtend(a, now) {
		a.EndTime = ExtendedEnd(a, now)
		newEnd := a.EndTime
		snipe = AntiSnipe{
			Triggered:        true,
			NewEndTime:       &newEnd,
			ExtensionSeconds: int(a.AntiSnipeExtension / time.Second),
		}
	}
	return a, bid, snipe, nil
}

// CloseOutcome is the result of closing an auction.
type CloseOutcome struct {
	WinnerID   *int64 `json:"winner_id"`
	WinningBid *Bid   `json:"winning_bid,omitempty"`
	ReserveMet bool   `json:"reserve_met"`
	Message    string `json:"message"`
}

// DecideClose transitions an active auction to closed. highest is the
// highest-priced active bid, or nil when none exist. When a reserve price is
// set and unmet, the auction still closes but no winner is declared.
func DecideClose(a Auction, highest *Bid) (Auction, CloseOutcome, error) {
	if a.Status != StatusActive {
		return a, CloseOutcome{}, ErrAuctionNotActive
	}
	a.Status = StatusClosed

	if highest == nil {
		return a, CloseOutcome{Message: "auction closed with no bids"}, nil
	}
	if a.ReservePrice.Valid && highest.Price.LessThan(a.ReservePrice.Decimal) {
		return a, CloseOutcome{
			WinningBid: highest,
			ReserveMet: false,
			Message:    "auction closed, reserve price not met",
		}, nil
	}

	winner := highest.UserID
	a.WinnerID = &winner
	return a, CloseOutcome{
		WinnerID:   &winner,
		WinningBid: highest,
		ReserveMet: true,
		Message:    "auction closed",
	}, nil
}

// CheckCancel validates a cancellation. Cancellation is only permitted
// pre-close; once bids exist only an admin may cancel.
func CheckCancel(a Auction, actor Actor) error {
	if a.Status != StatusActive {
		return ErrAuctionNotActive
	}
	if a.BidCount > 0 && !actor.IsAdmin() {
		return ErrCancelWithBids
	}
	return nil
}

// CheckWithdraw validates a withdrawal request. Failure reasons follow a
// fixed precedence so callers always see the most specific one:
// already withdrawn > is highest bid > auction not active > auction ended.
func CheckWithdraw(b Bid, a Auction, highest *Bid, actor Actor, now time.Time) error {
	if b.UserID != actor.ID {
		return ErrForbidden
	}
	if b.Status == BidWithdrawn {
		return ErrBidAlreadyWithdrawn
	}
	if highest != nil && highest.ID == b.ID {
		return ErrHighestBidLocked
	}
	if a.Status != StatusActive {
		return ErrAuctionNotActive
	}
	if HasEnded(a, now) {
		return ErrAuctionEnded
	}
	return nil
}

// Withdraw applies a validated withdrawal. last_price and bid_count are
// untouched: the ledger is historical and the highest bid can never be the
// one withdrawn.
func Withdraw(b Bid, now time.Time) Bid {
	b.Status = BidWithdrawn
	b.WithdrawnAt = &now
	return b
}
