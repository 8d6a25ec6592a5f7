// Package hub pushes catalog change notifications to browsers over
// websockets so open pages can refetch after templates are edited.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
)

const defaultBatchInterval = 250 * time.Millisecond

type Hub struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	broadcast    chan []byte
	logger       *slog.Logger
	mu           sync.RWMutex
	state        []byte
	stateMu      sync.RWMutex
	version      atomic.Int64
	rateLimiter  *RateLimiter
	batchEnabled bool
	ctxWrap      *ctxWrapper
	running      atomic.Bool
	onClients    func(n int)
}

type ctxWrapper struct {
	ctx context.Context
}

func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients:      make(map[string]*Client),
		register:     make(chan *Client, 16),
		unregister:   make(chan *Client, 16),
		broadcast:    make(chan []byte, 64),
		logger:       logger.With("component", "hub"),
		batchEnabled: true,
		ctxWrap:      &ctxWrapper{ctx: context.Background()},
	}
	h.rateLimiter = NewRateLimiter(defaultBatchInterval, func(_ string, data []byte) {
		h.sendBroadcast(data)
	})
	return h
}

func (h *Hub) getContext() context.Context {
	if h.ctxWrap != nil {
		return h.ctxWrap.ctx
	}
	return context.Background()
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.ctxWrap = &ctxWrapper{ctx: ctx}
	h.running.Store(true)
	defer h.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			h.rateLimiter.FlushAll()
			h.mu.Lock()
			for _, c := range h.clients {
				c.close()
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			h.reportClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			if state := h.currentState(); state != nil {
				client.enqueue(state)
			}
			go client.writePump(h.getContext())
			go client.readPump(h.getContext())
			h.logger.Debug("client connected", "client", client.id, "total", h.ClientCount())
			h.reportClients()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Debug("client disconnected", "client", client.id, "total", h.ClientCount())
			h.reportClients()

		case data := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				c.enqueue(data)
			}
			h.mu.RUnlock()
		}
	}
}

// HandleWebSocket upgrades the request. Connections made before Run starts
// are queued and served once it does.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept error", "error", err)
		return
	}

	client := newClient(conn, h)
	select {
	case h.register <- client:
	default:
		h.logger.Warn("hub not accepting connections")
		conn.Close(websocket.StatusTryAgainLater, "server busy")
	}
}

// NotifyCatalog records a new snapshot of n templates and tells every client.
// Bursts of notifications are coalesced into the latest one.
func (h *Hub) NotifyCatalog(n int) {
	msg := CatalogMessage{
		Type:      TypeCatalog,
		Version:   h.version.Add(1),
		Templates: n,
		Ts:        time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("error marshaling catalog message", "error", err)
		return
	}
	h.stateMu.Lock()
	h.state = data
	h.stateMu.Unlock()

	if h.batchEnabled && h.rateLimiter != nil {
		h.rateLimiter.Add(TypeCatalog, data)
		return
	}
	h.sendBroadcast(data)
}

func (h *Hub) NotifyReloadError(err error) {
	msg := ReloadErrorMessage{Type: TypeReloadError, Message: err.Error(), Ts: time.Now().UnixMilli()}
	data, mErr := json.Marshal(msg)
	if mErr != nil {
		h.logger.Error("error marshaling reload error message", "error", mErr)
		return
	}
	h.sendBroadcast(data)
}

func (h *Hub) sendBroadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

func (h *Hub) SendError(client *Client, message string) {
	h.sendTo(client, ErrorMessage{Type: TypeError, Message: message})
}

func (h *Hub) sendTo(client *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("error marshaling message", "error", err)
		return
	}
	client.enqueue(data)
}

func (h *Hub) currentState() []byte {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.state
}

// Version is the number of catalog notifications so far.
func (h *Hub) Version() int64 {
	return h.version.Load()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetOnClientCount registers a callback run on every connect and disconnect.
func (h *Hub) SetOnClientCount(fn func(n int)) {
	h.onClients = fn
}

func (h *Hub) reportClients() {
	if h.onClients != nil {
		h.onClients(h.ClientCount())
	}
}

func (h *Hub) SetBatchEnabled(enabled bool) {
	h.batchEnabled = enabled
}

func (h *Hub) FlushPending() {
	if h.rateLimiter != nil {
		h.rateLimiter.FlushAll()
	}
}

func (h *Hub) isRunning() bool {
	return h.running.Load()
}

func (h *Hub) unregisterClient(c *Client) {
	if !h.isRunning() {
		c.close()
		c.conn.Close(websocket.StatusNormalClosure, "")
		return
	}
	select {
	case h.unregister <- c:
	default:
		h.logger.Warn("unregister channel full, forcing close", "client", c.id)
		c.close()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}
}
