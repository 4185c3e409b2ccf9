package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the auction lifecycle state. Both closed and cancelled are
// terminal; no further bids or transitions are accepted.
type Status string

const (
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// BidStatus is the stored bid state. "outbid" and "winning" are derived
// views, never stored.
type BidStatus string

const (
	BidActive    BidStatus = "active"
	BidWithdrawn BidStatus = "withdrawn"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Actor is the authenticated principal performing an operation. Identity and
// role facts come from the gateway; the core only consumes them.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsModerator() bool { return a.Role == RoleModerator }

// Auction is the biddable record attached to an auction-type ad.
// LastPrice always equals the price of the most recent accepted bid (null if
// none); BidCount counts placements, withdrawn bids included.
type Auction struct {
	ID      int64
	AdID    int64
	OwnerID int64

	StartPrice   decimal.Decimal
	ReservePrice decimal.NullDecimal
	LastPrice    decimal.NullDecimal
	MinIncrement decimal.Decimal

	StartTime          time.Time
	EndTime            time.Time
	AntiSnipeWindow    time.Duration
	AntiSnipeExtension time.Duration

	AutoClose        bool
	LastPriceVisible bool

	Status   Status
	BidCount int
	WinnerID *int64
}

// Bid is a single price offer against an auction. Price is write-once; only
// Status and WithdrawnAt may change after creation.
type Bid struct {
	ID          int64
	AuctionID   int64
	UserID      int64
	Price       decimal.Decimal
	Comment     string
	Status      BidStatus
	WithdrawnAt *time.Time
	CreatedAt   time.Time
}
