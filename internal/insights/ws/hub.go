package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/sports-insights-poc/internal/insights/pubsub"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// conn serializa as escritas (gorilla não aceita writers concorrentes)
type conn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.WriteMessage(websocket.TextMessage, b)
}

func (c *conn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

// Hub gerencia conexões WebSocket e assinaturas por página
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// page -> set of connections
	subs map[string]map[*conn]struct{}

	// Current devolve o snapshot atual, enviado logo após o subscribe
	Current func(page string) (predictions.Snapshot, bool)

	OnConnect    func()
	OnDisconnect func()
}

// NewHub cria o hub com a política de origem informada
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*conn]struct{}),
	}
}

// HandleWS atende uma conexão: subscribe/unsubscribe por página e ping
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	wc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer wc.Close()
	c := &conn{c: wc}
	if h.OnConnect != nil {
		h.OnConnect()
	}

	for {
		var msg ClientMsg
		if err := wc.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.Page]; !ok {
				h.subs[msg.Page] = make(map[*conn]struct{})
			}
			h.subs[msg.Page][c] = struct{}{}
			h.mu.Unlock()
			if h.Current != nil {
				if s, ok := h.Current(msg.Page); ok {
					_ = c.writeJSON(pubsub.WSUpdate{Page: msg.Page, Payload: s})
				}
			}
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Page]; ok {
				delete(m, c)
				if len(m) == 0 {
					delete(h.subs, msg.Page)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}

	h.mu.Lock()
	for page, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, page)
		}
	}
	h.mu.Unlock()
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
}

// Broadcast envia a atualização para os inscritos na página
func (h *Hub) Broadcast(update pubsub.WSUpdate) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[update.Page]))
	for c := range h.subs[update.Page] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.write(b)
	}
}

// Subscribers conta conexões inscritas na página
func (h *Hub) Subscribers(page string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[page])
}

func (h *Hub) Name() string { return "ws" }

// Save faz o hub servir de sink direto quando o Redis está desligado
func (h *Hub) Save(_ context.Context, s predictions.Snapshot) error {
	h.Broadcast(pubsub.WSUpdate{Page: s.Page, Payload: s})
	return nil
}
