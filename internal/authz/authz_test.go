package authz

import (
	"testing"

	"adbidgo/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	owner := domain.Actor{ID: 1, Role: domain.RoleUser}
	bidder := domain.Actor{ID: 2, Role: domain.RoleUser}
	stranger := domain.Actor{ID: 3, Role: domain.RoleUser}
	mod := domain.Actor{ID: 4, Role: domain.RoleModerator}
	admin := domain.Actor{ID: 5, Role: domain.RoleAdmin}

	res := Resource{AuctionOwnerID: 1, BidOwnerID: 2}

	cases := []struct {
		name   string
		actor  domain.Actor
		action Action
		want   bool
	}{
		{"anyone may bid", stranger, ActionPlaceBid, true},
		{"owner lists bids", owner, ActionViewBids, true},
		{"moderator lists bids", mod, ActionViewBids, true},
		{"stranger cannot list bids", stranger, ActionViewBids, false},
		{"bidder cannot list bids", bidder, ActionViewBids, false},
		{"bid owner views own bid", bidder, ActionViewBid, true},
		{"auction owner views any bid", owner, ActionViewBid, true},
		{"stranger cannot view bid", stranger, ActionViewBid, false},
		{"only placer withdraws", bidder, ActionWithdrawBid, true},
		{"owner cannot withdraw others' bids", owner, ActionWithdrawBid, false},
		{"owner closes", owner, ActionCloseAuction, true},
		{"stranger cannot close", stranger, ActionCloseAuction, false},
		{"moderator cannot close", mod, ActionCloseAuction, false},
		{"owner cancels", owner, ActionCancelAuction, true},
		{"admin does everything", admin, ActionCancelAuction, true},
		{"admin withdraws", admin, ActionWithdrawBid, true},
		{"owner sees hidden last price", owner, ActionViewLastPrice, true},
		{"stranger does not", stranger, ActionViewLastPrice, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.actor, tc.action, res))
		})
	}
}
