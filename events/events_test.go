package events

import (
	"context"
	"crypto/tls"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/risk"
)

var at = time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

func accepted() gate.Result {
	tr := ledger.TradeRecord{ID: "01HZ", Asset: "A"}
	return gate.Result{
		Intent:  market.TradeIntent{Asset: "A", Side: market.Buy, Quantity: 10, Price: 100, Time: at},
		Outcome: gate.Accepted,
		Trade:   &tr,
		Equity:  9990,
	}
}

func halt() risk.HaltEvent {
	return risk.HaltEvent{Time: at, Peak: 10000, Equity: 8900, Drawdown: 0.11, Threshold: 0.1}
}

func TestFromResultAndHalt(t *testing.T) {
	t.Parallel()

	ev := FromResult("run", accepted())
	assert.Equal(t, TypeResult, ev.Type)
	assert.Equal(t, "accepted", ev.Outcome)
	assert.Equal(t, "01HZ", ev.TradeID)
	assert.Empty(t, ev.Reason)

	h := FromHalt("run", halt())
	assert.Equal(t, TypeHalt, h.Type)
	assert.Equal(t, "drawdown_halt", h.Reason)
	assert.Equal(t, 0.11, h.Drawdown)

	data, err := h.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"asset"`)
	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestMemoryPublisher(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Publish(ctx, FromResult("r", accepted())))
	require.NoError(t, m.Publish(ctx, FromHalt("r", halt())))

	assert.Len(t, m.Events(), 2)
	assert.Len(t, m.OfType(TypeHalt), 1)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, m.Publish(cancelled, Event{}), context.Canceled)
	assert.Len(t, m.Events(), 2)
}

func TestRedisPublishChannelAndStream(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	pub, err := NewRedisFromClient(db, "tradex:events", "tradex:stream")
	require.NoError(t, err)

	ev := FromHalt("run-1", halt())
	payload, err := ev.Marshal()
	require.NoError(t, err)

	mock.ExpectPublish("tradex:events", string(payload)).SetVal(1)
	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "tradex:stream",
		MaxLen: streamMaxLen,
		Approx: true,
		Values: []interface{}{"type", "halt", "payload", string(payload)},
	}).SetVal("1-0")

	require.NoError(t, pub.Publish(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublishError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	pub, err := NewRedisFromClient(db, "tradex:events", "")
	require.NoError(t, err)

	ev := FromResult("run-1", accepted())
	payload, err := ev.Marshal()
	require.NoError(t, err)
	mock.ExpectPublish("tradex:events", string(payload)).SetErr(errors.New("connection refused"))

	err = pub.Publish(context.Background(), ev)
	assert.ErrorContains(t, err, "redis: publish tradex:events")
	assert.ErrorContains(t, err, "connection refused")
}

func TestRedisNeedsDestination(t *testing.T) {
	t.Parallel()

	db, _ := redismock.NewClientMock()
	_, err := NewRedisFromClient(db, "", "")
	assert.Error(t, err)
}

func TestRedisOptionsTLS(t *testing.T) {
	plain := RedisConfig{Addr: "localhost:6379", DB: 2}.options()
	assert.Equal(t, "localhost:6379", plain.Addr)
	assert.Equal(t, 2, plain.DB)
	assert.Nil(t, plain.TLSConfig)

	secure := RedisConfig{Addr: "redis.example:6380", TLSEnabled: true}.options()
	require.NotNil(t, secure.TLSConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), secure.TLSConfig.MinVersion)
}
