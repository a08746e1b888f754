package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restobook/config"
	"restobook/shared/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, hub realtime.Hub, topic string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		hub.Attach(conn, topic)
	}))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func waitForSubscribers(t *testing.T, hub realtime.Hub, topic string, n int) {
	t.Helper()

	assert.Eventually(t, func() bool {
		return hub.Subscribers(topic) == n
	}, time.Second, 5*time.Millisecond)
}

func TestRestaurantTopic(t *testing.T) {
	assert.Equal(t, "restaurant:42", realtime.RestaurantTopic(42))
}

func TestHub_Broadcast(t *testing.T) {
	hub := realtime.NewHub(&config.Config{})
	defer hub.Close()

	topic := realtime.RestaurantTopic(7)
	server := newFeedServer(t, hub, topic)

	first := dial(t, server)
	second := dial(t, server)
	waitForSubscribers(t, hub, topic, 2)

	delivered := hub.Broadcast(topic, []byte(`{"type":"reservation.created"}`))
	assert.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))

		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"reservation.created"}`, string(msg))
	}

	assert.Equal(t, 0, hub.Broadcast(realtime.RestaurantTopic(8), []byte("{}")))
}

func TestHub_DetachOnDisconnect(t *testing.T) {
	hub := realtime.NewHub(&config.Config{})
	defer hub.Close()

	topic := realtime.RestaurantTopic(3)
	server := newFeedServer(t, hub, topic)

	conn := dial(t, server)
	waitForSubscribers(t, hub, topic, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, topic, 0)
}

func TestHub_Close(t *testing.T) {
	hub := realtime.NewHub(&config.Config{})

	topic := realtime.RestaurantTopic(9)
	server := newFeedServer(t, hub, topic)

	conn := dial(t, server)
	waitForSubscribers(t, hub, topic, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Subscribers(topic))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
