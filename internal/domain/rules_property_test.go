package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// Properties checked over random bid sequences:
//   - last_price equals the price of the most recent accepted bid
//   - bid_count equals the number of accepted placements
//   - accepted prices are non-decreasing and respect the increment
//   - a rejected bid leaves the auction unchanged

func genAuction(t *rapid.T) Auction {
	start := rapid.Int64Range(0, 100_000).Draw(t, "startPrice")
	inc := rapid.Int64Range(1, 1_000).Draw(t, "increment")
	return Auction{
		ID:                 1,
		OwnerID:            1,
		StartPrice:         decimal.NewFromInt(start),
		MinIncrement:       decimal.NewFromInt(inc),
		StartTime:          baseTime.Add(-time.Hour),
		EndTime:            baseTime.Add(24 * time.Hour),
		AntiSnipeWindow:    300 * time.Second,
		AntiSnipeExtension: 300 * time.Second,
		Status:             StatusActive,
	}
}

func TestProperty_PlacementInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAuction(t)
		n := rapid.IntRange(1, 40).Draw(t, "numBids")

		now := baseTime
		accepted := 0
		var lastAccepted decimal.Decimal
		for i := 0; i < n; i++ {
			// Offsets around the current minimum so both accepted and
			// rejected bids are generated.
			offset := rapid.Int64Range(-500, 2_000).Draw(t, "offset")
			price := MinimumNextBid(a).Add(decimal.NewFromInt(offset))
			before := a

			next, bid, _, err := ApplyBid(a, PlaceCommand{UserID: int64(i + 2), Price: price}, now)
			if offset < 0 {
				if err == nil {
					t.Fatalf("bid %s under minimum %s accepted", price, MinimumNextBid(a))
				}
				if next != before {
					t.Fatalf("rejected bid mutated auction state")
				}
				continue
			}
			if err != nil {
				t.Fatalf("valid bid %s rejected: %v", price, err)
			}
			if accepted > 0 && bid.Price.LessThan(lastAccepted) {
				t.Fatalf("accepted prices not monotonic: %s after %s", bid.Price, lastAccepted)
			}
			if !next.LastPrice.Valid || !next.LastPrice.Decimal.Equal(bid.Price) {
				t.Fatalf("last_price %v does not track accepted bid %s", next.LastPrice, bid.Price)
			}
			accepted++
			lastAccepted = bid.Price
			a = next
			now = now.Add(time.Second)
		}
		if a.BidCount != accepted {
			t.Fatalf("bid_count %d, accepted placements %d", a.BidCount, accepted)
		}
	})
}

func TestProperty_AntiSnipeKeepsAuctionOpen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAuction(t)
		// Land every bid inside the snipe window.
		bids := rapid.IntRange(1, 20).Draw(t, "numBids")
		now := a.EndTime.Add(-time.Duration(rapid.Int64Range(1, 299).Draw(t, "lead")) * time.Second)

		for i := 0; i < bids; i++ {
			next, _, snipe, err := ApplyBid(a, PlaceCommand{UserID: int64(i + 2), Price: MinimumNextBid(a)}, now)
			if err != nil {
				t.Fatalf("in-window bid rejected: %v", err)
			}
			if !snipe.Triggered {
				t.Fatalf("bid inside window did not extend")
			}
			if !next.EndTime.Equal(now.Add(a.AntiSnipeExtension)) {
				t.Fatalf("end_time %v, want %v", next.EndTime, now.Add(a.AntiSnipeExtension))
			}
			if HasEnded(next, now) {
				t.Fatalf("auction ended immediately after extension")
			}
			a = next
			now = now.Add(time.Duration(rapid.Int64Range(0, 299).Draw(t, "gap")) * time.Second)
		}
	})
}

func TestProperty_CloseNeverDeclaresWinnerUnderReserve(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAuction(t)
		reserve := rapid.Int64Range(1, 200_000).Draw(t, "reserve")
		a.ReservePrice = decimal.NewNullDecimal(decimal.NewFromInt(reserve))

		price := rapid.Int64Range(0, 200_000).Draw(t, "highest")
		highest := &Bid{ID: 1, AuctionID: a.ID, UserID: 2, Price: decimal.NewFromInt(price), Status: BidActive}

		next, out, err := DecideClose(a, highest)
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if next.Status != StatusClosed {
			t.Fatalf("close left status %s", next.Status)
		}
		met := price >= reserve
		if out.ReserveMet != met {
			t.Fatalf("reserve_met=%v for price %d reserve %d", out.ReserveMet, price, reserve)
		}
		if met && (out.WinnerID == nil || *out.WinnerID != highest.UserID) {
			t.Fatalf("reserve met but winner not declared")
		}
		if !met && (out.WinnerID != nil || next.WinnerID != nil) {
			t.Fatalf("winner declared under reserve")
		}
	})
}
