package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// room is the set of live connections watching one auction.
type room struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func newRoom() *room { return &room{conns: make(map[*clientConn]struct{})} }

func (r *room) add(c *clientConn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

// remove detaches the connection without closing it and reports how many
// viewers are left.
func (r *room) remove(c *clientConn) int {
	r.mu.Lock()
	delete(r.conns, c)
	n := len(r.conns)
	r.mu.Unlock()
	return n
}

// broadcast writes payload to every viewer, with the I/O outside the lock.
// Connections that fail the write are detached and shut down; their reader
// goroutines notice the closed socket and finish cleanup through Hub.Leave.
func (r *room) broadcast(payload []byte) {
	r.mu.RLock()
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(websocket.TextMessage, payload); err != nil {
			r.remove(c)
			c.shutdown()
		}
	}
}
