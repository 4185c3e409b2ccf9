// Package authz collects the per-endpoint role checks into a single policy
// keyed by (actor, action, resource ownership facts).
package authz

import (
	"adbidgo/internal/domain"
)

type Action string

const (
	ActionPlaceBid      Action = "place_bid"
	ActionViewBids      Action = "view_bids"
	ActionViewBid       Action = "view_bid"
	ActionWithdrawBid   Action = "withdraw_bid"
	ActionCloseAuction  Action = "close_auction"
	ActionCancelAuction Action = "cancel_auction"
	ActionViewLastPrice Action = "view_last_price"
)

// Resource carries the ownership facts a decision needs. BidOwnerID is only
// set for bid-scoped actions.
type Resource struct {
	AuctionOwnerID int64
	BidOwnerID     int64
}

// Allowed decides whether actor may perform action on resource.
func Allowed(actor domain.Actor, action Action, res Resource) bool {
	if actor.IsAdmin() {
		return true
	}
	switch action {
	case ActionPlaceBid:
		return true
	case ActionViewBids:
		return actor.IsModerator() || actor.ID == res.AuctionOwnerID
	case ActionViewBid:
		return actor.IsModerator() || actor.ID == res.AuctionOwnerID || actor.ID == res.BidOwnerID
	case ActionWithdrawBid:
		// Only the placer; the domain re-checks this alongside the
		// withdrawal restrictions.
		return actor.ID == res.BidOwnerID
	case ActionCloseAuction, ActionCancelAuction:
		return actor.ID == res.AuctionOwnerID
	case ActionViewLastPrice:
		return actor.IsModerator() || actor.ID == res.AuctionOwnerID
	}
	return false
}
