// Package ws difunde cambios de stock a los clientes conectados por WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const broadcastBuffer = 64

// Conn lo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ ports.StockPublisher = (*Hub)(nil)

// Hub mantiene los clientes y reparte cada mensaje a todos.
type Hub struct {
	clients    map[Conn]bool
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	done       chan struct{} // se cierra cuando Run termina
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewHub crea el hub. Hay que arrancarlo con go hub.Run(ctx).
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log.Component("ws"),
	}
}

// Register agrega un cliente. Si el hub ya se detuvo cierra la conexión y devuelve false.
func (h *Hub) Register(c Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		_ = c.Close()
		return false
	}
}

// Unregister quita y cierra un cliente.
func (h *Hub) Unregister(c Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
		_ = c.Close()
	}
}

// Clients número de clientes conectados.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// PublishStock encola el evento sin bloquear: si el buffer está lleno el evento se descarta.
func (h *Hub) PublishStock(ev ports.StockEvent) {
	msg, err := json.Marshal(struct {
		Type string           `json:"type"`
		Data ports.StockEvent `json:"data"`
	}{Type: "stock_changed", Data: ev})
	if err != nil {
		h.log.Error().Err(err).Msg("serializar evento de stock")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("item_id", ev.ItemID).Msg("buffer de difusión lleno, evento descartado")
	}
}

// Run atiende altas, bajas y difusiones hasta que ctx se cancela.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente WS conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("cliente WS caído")
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
