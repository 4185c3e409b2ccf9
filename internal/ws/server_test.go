package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinger_SendsPeriodicPings(t *testing.T) {
	srv, cli := dialPair(t)

	pings := make(chan struct{}, 8)
	cli.SetPingHandler(func(string) error {
		pings <- struct{}{}
		return nil
	})
	go func() {
		for {
			if _, _, err := cli.ReadMessage(); err != nil {
				return
			}
		}
	}()

	stop := make(chan struct{})
	defer close(stop)
	go pinger(&clientConn{rawConn: srv}, 20*time.Millisecond, stop)

	for i := 0; i < 2; i++ {
		select {
		case <-pings:
		case <-time.After(2 * time.Second):
			t.Fatal("no ping received; idle viewers would hit the read deadline")
		}
	}
}

func TestPinger_StopsOnStop(t *testing.T) {
	srv, cli := dialPair(t)
	go func() {
		for {
			if _, _, err := cli.ReadMessage(); err != nil {
				return
			}
		}
	}()

	stop := make(chan struct{})
	close(stop)

	done := make(chan struct{})
	go func() {
		pinger(&clientConn{rawConn: srv}, 10*time.Millisecond, stop)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinger must exit once its connection is torn down")
	}
}

// newFeedServer stands the full /ws endpoint up. The Redis address is a dead
// port: the subscription simply delivers nothing, which is all these tests
// need.
func newFeedServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	srv := NewWsServer(hub, redis.NewClient(&redis.Options{Addr: "localhost:1"}))
	r := gin.New()
	r.GET("/ws", srv.Handle)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, hub
}

func TestHandle_KeepsIdleViewersAlive(t *testing.T) {
	ts, hub := newFeedServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?auction_id=1"
	cli, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer cli.Close()

	pings := make(chan struct{}, 8)
	cli.SetPingHandler(func(appData string) error {
		pings <- struct{}{}
		return cli.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	msgs := make(chan string, 1)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := cli.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			msgs <- string(data)
		}
	}()

	// A viewer that sends nothing must still be pinged before the read
	// deadline would fire.
	select {
	case <-pings:
	case err := <-readErr:
		t.Fatalf("idle viewer dropped before the first ping: %v", err)
	case <-time.After(pingPeriod + 2*time.Second):
		t.Fatal("no ping within the ping period; idle viewers would be dropped")
	}

	// After the ping/pong exchange the room must still deliver events.
	hub.Broadcast(1, []byte(`{"event":"bid"}`))
	select {
	case got := <-msgs:
		assert.Equal(t, `{"event":"bid"}`, got)
	case err := <-readErr:
		t.Fatalf("viewer dropped after ping/pong exchange: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast did not reach the idle viewer")
	}
}

func TestHandle_RequiresAuctionID(t *testing.T) {
	ts, _ := newFeedServer(t)

	for _, path := range []string{"/ws", "/ws?auction_id=abc", "/ws?auction_id=0"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}
