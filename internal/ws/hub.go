// Package ws mantém os clientes websocket conectados e distribui os eventos de loja.
package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Client é uma conexão websocket registrada no hub.
// OwnerID vazio recebe eventos de todos os donos.
type Client struct {
	ID      string
	OwnerID string
	Send    chan []byte
}

func (c *Client) wants(ownerID string) bool {
	return c.OwnerID == "" || c.OwnerID == ownerID
}

type envelope struct {
	ownerID string // "" = vai para todos
	msg     []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // id -> client
	register chan *Client
	unreg    chan *Client
	outbox   chan envelope

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		outbox:   make(chan envelope, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	id := h.nextID.Add(1)
	return fmt.Sprintf("c%d", id)
}

// Run é o único dono do mapa de clientes; o mutex só protege leituras externas (Count).
func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "ownerid", c.OwnerID, "total", total)

		case c := <-h.unreg:
			if c == nil || c.ID == "" {
				continue
			}
			h.mu.Lock()
			if cur, ok := h.clients[c.ID]; ok && cur == c {
				delete(h.clients, c.ID)
				close(c.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_unregistered", "id", c.ID, "total", total)

		case env := <-h.outbox:
			h.deliver(env)

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) deliver(env envelope) {
	var slow []*Client
	h.mu.RLock()
	for _, c := range h.clients {
		if env.ownerID != "" && !c.wants(env.ownerID) {
			continue
		}
		select {
		case c.Send <- env.msg:
		default:
			// cliente lento -> dropa para não travar o hub
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		if cur, ok := h.clients[c.ID]; ok && cur == c {
			delete(h.clients, c.ID)
			close(c.Send)
			h.log.Warn("client_dropped_slow", "id", c.ID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

// Register, Unregister e os envios viram no-op depois do Stop.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

// Broadcast entrega a mensagem para todos os clientes, sem filtro de dono.
func (h *Hub) Broadcast(b []byte) { h.enqueue(envelope{msg: b}) }

// PublishForOwner entrega a clientes sem filtro e aos inscritos no ownerID.
func (h *Hub) PublishForOwner(ownerID string, b []byte) {
	h.enqueue(envelope{ownerID: ownerID, msg: b})
}

func (h *Hub) enqueue(env envelope) {
	select {
	case h.outbox <- env:
	case <-h.stopped:
	}
}

// Count devolve o número de clientes registrados.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
