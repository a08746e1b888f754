// Package realtime fans reservation activity out to websocket subscribers.
package realtime

//go:generate go run go.uber.org/mock/mockgen -source=./hub.go -destination=./mocks/hub_mock.go -package=mocks

import (
	"fmt"
	"restobook/config"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultSendBuffer = 16

// RestaurantTopic is the feed every reservation change of a restaurant is
// broadcast on.
func RestaurantTopic(restaurantID int64) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

type Hub interface {
	// Attach registers conn under the given topics and starts its pumps.
	Attach(conn *websocket.Conn, topics ...string)
	// Broadcast returns how many subscribers the message was queued for.
	// Slow subscribers whose buffer is full are dropped.
	Broadcast(topic string, message []byte) int
	Subscribers(topic string) int
	Close()
}

type hub struct {
	mu         sync.RWMutex
	topics     map[string]map[*client]struct{}
	sendBuffer int
}

func NewHub(cfg *config.Config) Hub {
	buffer := cfg.Realtime.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}

	return &hub{
		topics:     make(map[string]map[*client]struct{}),
		sendBuffer: buffer,
	}
}

func (h *hub) Attach(conn *websocket.Conn, topics ...string) {
	c := &client{
		hub:  h,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()

	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}

		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*client]struct{})
		}

		h.topics[topic][c] = struct{}{}
		c.topics = append(c.topics, topic)
	}

	h.mu.Unlock()

	log.Debug().Str("client", c.id).Strs("topics", c.topics).Msg("websocket client attached")

	go c.writePump()
	go c.readPump()
}

func (h *hub) detach(c *client) {
	h.mu.Lock()
	h.detachLocked(c)
	h.mu.Unlock()
}

func (h *hub) detachLocked(c *client) {
	for _, topic := range c.topics {
		subs, ok := h.topics[topic]
		if !ok {
			continue
		}

		delete(subs, c)

		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}

	c.close()
}

func (h *hub) Broadcast(topic string, message []byte) int {
	h.mu.RLock()

	clients := make([]*client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		clients = append(clients, c)
	}

	h.mu.RUnlock()

	delivered := 0

	for _, c := range clients {
		if h.enqueue(c, message) {
			delivered++

			continue
		}

		log.Warn().Str("client", c.id).Str("topic", topic).Msg("websocket send buffer full, dropping client")
		go h.detach(c)
	}

	return delivered
}

// enqueue reports false when the buffer is full or the client is already gone.
func (h *hub) enqueue(c *client, message []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (h *hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.topics[topic])
}

func (h *hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.topics {
		for c := range subs {
			h.detachLocked(c)
		}
	}

	h.topics = make(map[string]map[*client]struct{})
}
