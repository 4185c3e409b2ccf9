package ws

import (
	"sync"
)

// Hub tracks which viewers watch which auction. Rooms are created on the
// first Join and reclaimed when the last viewer leaves, so a long-running
// process does not accumulate rooms for auctions nobody watches anymore.
type Hub struct {
	mu    sync.Mutex
	rooms map[int64]*room
}

func NewHub() *Hub { return &Hub{rooms: make(map[int64]*room)} }

// Broadcast delivers one event payload to every viewer of the auction. The
// write I/O happens outside the hub lock.
func (h *Hub) Broadcast(auctionID int64, payload []byte) {
	h.mu.Lock()
	r := h.rooms[auctionID]
	h.mu.Unlock()
	if r != nil {
		r.broadcast(payload)
	}
}

func (h *Hub) Join(auctionID int64, c *clientConn) {
	h.mu.Lock()
	r := h.rooms[auctionID]
	if r == nil {
		r = newRoom()
		h.rooms[auctionID] = r
	}
	h.mu.Unlock()
	r.add(c)
}

// Leave detaches the viewer, closes its connection and drops the room once
// it is empty.
func (h *Hub) Leave(auctionID int64, c *clientConn) {
	h.mu.Lock()
	r := h.rooms[auctionID]
	if r != nil && r.remove(c) == 0 {
		delete(h.rooms, auctionID)
	}
	h.mu.Unlock()
	c.shutdown()
}
