package gateway

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Hub tracks every live connection and fans events out to all of
// them. The Run loop is the only goroutine touching the client set, so
// no locking is needed. Delivery is best-effort and at-most-once: a
// client whose send buffer is full is dropped and has to resync via
// request-state after reconnecting.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Debug().Int("clients", len(h.clients)).Msg("client connected")

		case client := <-h.unregister:
			h.drop(client)

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Emit broadcasts one event to every connected client, preserving the
// order Emit was called in.
func (h *Hub) Emit(event string, data any) {
	payload, err := json.Marshal(outEnvelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("could not encode broadcast")
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

func (h *Hub) Shutdown() {
	close(h.done)
}

func (h *Hub) fanOut(message []byte) {
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer, cut it loose and let it resync
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	log.Debug().Int("clients", len(h.clients)).Msg("client disconnected")
}
