package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 12 * time.Second
	pingPeriod = 3 * time.Second // must be < pongWait
)

// WsServer serves the live bid feed: clients join one auction room and
// receive every event published for that auction. The feed is broadcast-only;
// bids are placed over the REST API.
type WsServer struct {
	hub    *Hub
	subMgr *subscriptionManager
}

func NewWsServer(hub *Hub, rdc *redis.Client) *WsServer {
	return &WsServer{
		hub:    hub,
		subMgr: newSubscriptionManager(rdc, hub),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The gateway in front of this service enforces origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle is the gin entry-point for GET /ws?auction_id=<id>.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	auctionID, err := strconv.ParseInt(ginCtx.Query("auction_id"), 10, 64)
	if err != nil || auctionID <= 0 {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "auction_id is required"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws_upgrade_failed", zap.Error(err))
		return
	}

	conn := &clientConn{rawConn: rawConn}
	s.subMgr.Subscribe(auctionID)
	s.hub.Join(auctionID, conn)
	stop := make(chan struct{})
	go pinger(conn, pingPeriod, stop)
	defer func() {
		close(stop)
		s.hub.Leave(auctionID, conn)
		s.subMgr.Unsubscribe(auctionID)
	}()

	// Reader loop only services control frames and detects disconnects.
	rawConn.SetReadLimit(512)
	_ = rawConn.SetReadDeadline(time.Now().Add(pongWait))
	rawConn.SetPongHandler(func(string) error {
		return rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := rawConn.ReadMessage(); err != nil {
			return
		}
	}
}

// pinger keeps idle viewers alive. The read deadline is only refreshed by
// pongs, and the browser only sends pongs in reply to our pings.
func pinger(conn *clientConn, period time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
