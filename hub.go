package main

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks live connections, enforces connection limits and tells the
// world when a connection goes away.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	unregister chan *Client
	world      *World
	cfg        ServerConfig
	limits     *connLimiter
	log        *slog.Logger
}

// NewHub creates a new Hub for world
func NewHub(world *World, cfg ServerConfig, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client, 64),
		world:      world,
		cfg:        cfg,
		limits:     newConnLimiter(cfg.MaxConnsPerIP, cfg.MaxTotalConns),
		log:        logger.With(slog.String("component", "hub")),
	}
}

// connLimiter counts open connections per remote IP and in total. It is
// called from HTTP handlers, so the check and the increment happen under
// one lock.
type connLimiter struct {
	mu       sync.Mutex
	perIP    map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

func newConnLimiter(maxPerIP, maxTotal int) *connLimiter {
	return &connLimiter{
		perIP:    make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// acquire reserves a slot for ip, or reports false when a limit is hit.
func (l *connLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total >= l.maxTotal || l.perIP[ip] >= l.maxPerIP {
		return false
	}
	l.perIP[ip]++
	l.total++
	return true
}

func (l *connLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perIP[ip] == 0 {
		return
	}
	if l.perIP[ip]--; l.perIP[ip] == 0 {
		delete(l.perIP, ip)
	}
	l.total--
}

func (l *connLimiter) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// add registers client. It must run before the client's pumps start so an
// unregister can never overtake it.
func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.log.Debug("client registered", slog.String("conn", client.connID), slog.Int("player", client.playerID))
}

// Run processes unregister events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			delete(h.clients, client)
			h.mu.Unlock()
			if !ok {
				continue
			}
			// World first, so it never sends on the closed channel.
			h.world.Disconnect(client.playerID, client)
			close(client.send)
			h.limits.release(client.remoteAddr)
			h.log.Debug("client unregistered", slog.String("conn", client.connID), slog.Int("player", client.playerID))
		}
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
