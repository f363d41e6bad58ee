package stream

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kilianp07/dualportal/core/logger"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/internal/eventbus"
)

// sendBuffer is the per-client outbound queue depth. A client that cannot
// drain it misses snapshots rather than blocking publication.
const sendBuffer = 8

// Snapshotter provides the current authoritative snapshot for new clients.
type Snapshotter interface {
	Snapshot() model.SimulationSnapshot
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan model.SimulationSnapshot
	done chan struct{}
}

// Hub serves the /ws push channel: every connected client receives the
// current snapshot on connect and a new one after every state-affecting
// operation. Inbound frames are ignored; connection loss deregisters the
// client.
type Hub struct {
	bus      *eventbus.Bus[model.SimulationSnapshot]
	source   Snapshotter
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

// NewHub creates the hub. Run must be started for snapshots to flow.
func NewHub(bus *eventbus.Bus[model.SimulationSnapshot], source Snapshotter, log logger.Logger) *Hub {
	return &Hub{
		bus:    bus,
		source: source,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary origins in this
			// single-instance simulation; there is nothing to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*client),
	}
}

// Run subscribes to the snapshot bus and fans snapshots out to all clients
// until the context is canceled. Slow clients are skipped, never waited on.
func (h *Hub) Run(ctx context.Context) {
	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case snap, ok := <-sub:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) broadcast(snap model.SimulationSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- snap:
		default:
		}
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("ws upgrade: %v", err)
		return
	}
	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan model.SimulationSnapshot, sendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Debugf("ws client %s connected", c.id)

	// New observers converge immediately on the authoritative state.
	c.send <- h.source.Snapshot()

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case snap := <-c.send:
			if err := c.conn.WriteJSON(snap); err != nil {
				h.deregister(c)
				return
			}
		}
	}
}

// readLoop drains inbound frames. Malformed frames are ignored; a read
// error means the connection is gone.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.deregister(c)
			return
		}
	}
}

func (h *Hub) deregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.done)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
	h.log.Debugf("ws client %s disconnected", c.id)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[uuid.UUID]*client)
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
		_ = c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
