package main

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.limits.acquire(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.limits.release(ip)
			hub.log.Warn("upgrade error", slog.String("remote", ip), slog.Any("err", err))
			return
		}

		client := NewClient(hub, conn, ip)
		// Connect queues the init frame before the pumps start.
		client.playerID = hub.world.Connect(client)
		client.log = client.log.With(slog.Int("player", client.playerID))
		hub.add(client)

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		info := hub.world.Status()
		info.Connections = hub.ClientCount()
		if err := json.NewEncoder(w).Encode(info); err != nil {
			hub.log.Warn("status encode error", slog.Any("err", err))
		}
	})

	return mux
}
