package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")

	// ErrAuctionNotActive covers both a terminal status and a bid arriving
	// outside the [start_time, end_time) window.
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAuctionEnded     = errors.New("auction has ended")

	ErrBidAlreadyWithdrawn = errors.New("bid already withdrawn")
	ErrHighestBidLocked    = errors.New("highest bid cannot be withdrawn")
	ErrCancelWithBids      = errors.New("auction with bids can only be cancelled by an admin")

	ErrForbidden = errors.New("not allowed")
)

// BidTooLowError reports a bid under the minimum next bid; the computed
// minimum is carried so callers can surface it.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %s", e.Minimum.StringFixed(2))
}
