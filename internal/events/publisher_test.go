package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	rdc, mock := redismock.NewClientMock()

	body := CloseBody{ReserveMet: true}
	payload, err := json.Marshal(envelope{Event: EventClosed, Body: body})
	require.NoError(t, err)

	mock.ExpectPublish("auc:7:events", payload).SetVal(1)

	NewPublisher(rdc).Publish(context.Background(), 7, EventClosed, body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_BidWithoutExtensionOmitsNewEnd(t *testing.T) {
	rdc, mock := redismock.NewClientMock()

	body := BidBody{BidID: 5, UserID: 2, Price: "1100.00", BidCount: 1}
	payload, err := json.Marshal(envelope{Event: EventBid, Body: body})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "new_ends_at")

	mock.ExpectPublish("auc:7:events", payload).SetVal(1)

	NewPublisher(rdc).Publish(context.Background(), 7, EventBid, body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_FailureIsSwallowed(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	mock.ExpectPublish("auc:7:events", []byte(`{"event":"cancelled"}`)).
		SetErr(assert.AnError)

	// Must not panic or propagate.
	NewPublisher(rdc).Publish(context.Background(), 7, EventCancelled, nil)
	assert.NoError(t, mock.ExpectationsWereMet())
}
