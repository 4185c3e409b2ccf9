// Package events publishes auction events to per-auction Redis pub/sub
// channels. The websocket layer subscribes to the same channels, so every
// instance sees events regardless of which one handled the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EventBid       = "bid"
	EventExtended  = "extended"
	EventClosed    = "closed"
	EventCancelled = "cancelled"
)

// Channel returns the pub/sub channel for one auction.
func Channel(auctionID int64) string {
	return fmt.Sprintf("auc:%d:events", auctionID)
}

// envelope is the wire frame: {"event":"bid","body":{...}}.
type envelope struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

type BidBody struct {
	BidID     int64     `json:"bid_id"`
	UserID    int64     `json:"user_id"`
	Price     string    `json:"price"`
	BidCount  int       `json:"bid_count"`
	PlacedAt  time.Time `json:"placed_at"`
	Extended  bool       `json:"extended"`
	NewEndsAt *time.Time `json:"new_ends_at,omitempty"`
}

type CloseBody struct {
	WinnerID   *int64 `json:"winner_id"`
	ReserveMet bool   `json:"reserve_met"`
}

type Publisher struct {
	rdc *redis.Client
}

func NewPublisher(rdc *redis.Client) *Publisher { return &Publisher{rdc: rdc} }

// Publish sends one event; failures are logged, never propagated — the
// primary operation has already committed.
func (p *Publisher) Publish(ctx context.Context, auctionID int64, event string, body any) {
	payload, err := json.Marshal(envelope{Event: event, Body: body})
	if err != nil {
		zap.L().Warn("event_marshal_failed", zap.String("event", event), zap.Error(err))
		return
	}
	if err := p.rdc.Publish(ctx, Channel(auctionID), payload).Err(); err != nil {
		zap.L().Warn("event_publish_failed",
			zap.String("event", event),
			zap.Int64("auction_id", auctionID),
			zap.Error(err),
		)
	}
}
