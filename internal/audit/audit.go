// Package audit appends domain mutations to a Redis stream for the audit
// collaborator to consume. Recording is fire-and-forget: a failed append is
// logged and never fails the primary operation.
package audit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Stream = "audit_stream"

type Entry struct {
	Action    string
	ActorID   int64
	AuctionID int64
	BidID     int64
	Price     string
	Detail    string
}

type Recorder struct {
	rdc *redis.Client
	now func() time.Time
}

func NewRecorder(rdc *redis.Client) *Recorder {
	return &Recorder{rdc: rdc, now: time.Now}
}

// Record appends e to the audit stream.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	values := map[string]any{
		"action": e.Action,
		"actor":  e.ActorID,
		"aid":    e.AuctionID,
		"at":     r.now().UTC().Unix(),
	}
	if e.BidID != 0 {
		values["bid"] = e.BidID
	}
	if e.Price != "" {
		values["price"] = e.Price
	}
	if e.Detail != "" {
		values["detail"] = e.Detail
	}

	if err := r.rdc.XAdd(ctx, &redis.XAddArgs{Stream: Stream, Values: values}).Err(); err != nil {
		zap.L().Warn("audit_append_failed",
			zap.String("action", e.Action),
			zap.Int64("auction_id", e.AuctionID),
			zap.Error(err),
		)
	}
}
