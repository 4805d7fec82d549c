// Package websocket fans live stats updates out to browser connections.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/cortexos/landing/internal/logging"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Hub handles connection management and broadcasting.
//
// A single goroutine owns registration, unregistration and broadcast. Each
// client has a writer goroutine draining its send channel and a reader that
// only exists to notice the client going away.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	greeting func() (any, error)
	logger   logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// Option configures a Hub.
type Option func(*Hub)

// WithGreeting sets the message each client receives as soon as it connects.
func WithGreeting(fn func() (any, error)) Option {
	return func(h *Hub) { h.greeting = fn }
}

// WithLogger sets the hub logger.
func WithLogger(logger logging.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// NewHub creates a hub and starts its goroutine. Call Shutdown to stop it.
func NewHub(opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	h.logger = h.logger.WithComponent("websocket")

	go h.run()
	return h
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The feed is public and read-only, like the JSON API.
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "reason", err.Error())
		return
	}

	client := &Client{
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		remoteAddr:  r.RemoteAddr,
		connectedAt: time.Now(),
	}

	if h.greeting != nil {
		if data, err := h.encodeGreeting(); err != nil {
			h.logger.Warn(r.Context(), err, "greeting skipped")
		} else {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.ctx.Done():
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.writeLoop(client)
	h.readLoop(client)
}

func (h *Hub) encodeGreeting() ([]byte, error) {
	msg, err := h.greeting()
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info(h.ctx, "client connected", "remote", client.remoteAddr, "clients", n)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-h.ctx.Done():
			return
		}
	}
}

// fanOut queues message for every client, dropping clients whose buffers
// are full.
func (h *Hub) fanOut(message []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn(h.ctx, nil, "dropping slow client", "remote", client.remoteAddr)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info(h.ctx, "client disconnected", "remote", client.remoteAddr,
			"clients", n, "connected_for", time.Since(client.connectedAt).Round(time.Second))
	}
}

// readLoop discards client messages and returns once the connection is gone.
func (h *Hub) readLoop(client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.ctx.Done():
		}
	}()

	for {
		if _, _, err := client.conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer client.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.logger.Debug(h.ctx, "websocket write failed", "remote", client.remoteAddr, "reason", err.Error())
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// Broadcast encodes msg as JSON and queues it for every connected client.
func (h *Hub) Broadcast(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal broadcast message: %w", err)
	}
	if h.ctx.Err() != nil {
		return fmt.Errorf("hub is shut down")
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shut down")
	default:
		return fmt.Errorf("broadcast queue full")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every client connection and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.cancel()

		h.mu.Lock()
		clients := h.clients
		h.clients = make(map[*Client]struct{})
		for client := range clients {
			close(client.send)
		}
		h.mu.Unlock()

		for client := range clients {
			_ = client.conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
		h.logger.Info(ctx, "hub shut down", "clients", len(clients))
	})
	return nil
}
