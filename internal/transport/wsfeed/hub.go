// Package wsfeed bridges internal/events subscriptions onto websocket
// connections for the trades:<symbol> and book:<symbol> topics (spec.md
// §6). Each connection gets its own events.Subscriber and its own pump
// goroutine; a slow or dead client only ever affects its own dropped-event
// counter, never the matching critical section (spec.md §4.5, §5) — the
// same isolation idiom the teacher applies to its client session map in
// internal/net/server.go, adapted here from a per-session TCP write to a
// per-connection websocket write.
package wsfeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"matchcore/internal/events"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscribeMessage is the client-sent JSON message selecting topics.
type subscribeMessage struct {
	Topics []string `json:"topics"`
}

// outboundMessage is the self-describing envelope every delivered event is
// wrapped in, so a client can detect gaps via Sequence (spec.md §6 minimum
// contract for event topics).
type outboundMessage struct {
	Topic    string `json:"topic"`
	Sequence uint64 `json:"sequence"`
	Payload  any    `json:"payload"`
}

// Hub owns the publisher subscriptions are drawn from.
type Hub struct {
	publisher *events.Publisher
}

// NewHub builds a Hub fronting publisher.
func NewHub(publisher *events.Publisher) *Hub {
	return &Hub{publisher: publisher}
}

// ServeHTTP upgrades the connection, reads one subscribe message to learn
// the client's topics, then pumps events until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var sub subscribeMessage
	if err := conn.ReadJSON(&sub); err != nil {
		log.Debug().Err(err).Msg("websocket client disconnected before subscribing")
		return
	}
	if len(sub.Topics) == 0 {
		return
	}

	subscriber := h.publisher.Subscribe(sub.Topics...)
	defer h.publisher.Unsubscribe(subscriber)

	h.pump(conn, subscriber)
}

// pump writes queued events to conn until the peer closes the connection
// (readLoop returns) or a write fails. Write errors end the pump; they never
// propagate back into matching.
func (h *Hub) pump(conn *websocket.Conn, subscriber *events.Subscriber) {
	var writeMu sync.Mutex
	done := make(chan struct{})

	go h.readLoop(conn, done)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-subscriber.Wait():
			for _, e := range subscriber.Recv() {
				msg := outboundMessage{Topic: e.Topic, Sequence: e.Sequence, Payload: e.Payload}
				b, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				writeMu.Lock()
				err = conn.WriteMessage(websocket.TextMessage, b)
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}
}

// readLoop exists only to notice when the peer closes the connection;
// subscribers never send anything after their initial subscribe message.
func (h *Hub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
