// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"sovlens/internal/pkg/logger"
)

// runEventClient streams run lifecycle events to one WebSocket peer
type runEventClient struct {
	conn          *websocket.Conn
	send          chan []byte
	runID         string
	log           *logger.Logger
	subscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// RunWebSocketHandler streams lifecycle events of one analysis run over a
// WebSocket. Events arrive on the bus as <topicPrefix>.run.<kind> with the
// run record as payload; only events for the requested run are forwarded.
func RunWebSocketHandler(natsConn *nats.Conn, topicPrefix string, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "id")
		if runID == "" {
			http.Error(w, "Missing run ID", http.StatusBadRequest)
			return
		}

		if natsConn == nil {
			http.Error(w, "Event streaming unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("upgrading to websocket", "error", err)
			return
		}

		client := &runEventClient{
			conn:  conn,
			send:  make(chan []byte, 16),
			runID: runID,
			log:   log,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribeToRun(natsConn, topicPrefix); err != nil {
			log.Error("subscribing to run events", "run_id", runID, "error", err)
			client.closeConnection()
			return
		}

		welcome := map[string]interface{}{
			"type":   "subscribed",
			"run_id": runID,
			"time":   time.Now().UTC(),
		}
		welcomeJSON, _ := json.Marshal(welcome)
		client.send <- welcomeJSON

		log.Info("websocket connected", "run_id", runID, "remote", r.RemoteAddr)
	}
}

// subscribeToRun subscribes to the run event topics, forwarding only
// events matching the client's run ID.
func (c *runEventClient) subscribeToRun(natsConn *nats.Conn, topicPrefix string) error {
	forward := func(msg *nats.Msg) {
		var event struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.log.Warn("dropping malformed run event", "error", err)
			return
		}
		if event.ID != c.runID {
			return
		}
		select {
		case c.send <- msg.Data:
		default:
			c.log.Warn("dropping run event, client too slow", "run_id", c.runID)
		}
	}

	for _, kind := range []string{"completed", "failed"} {
		topic := fmt.Sprintf("%s.run.%s", topicPrefix, kind)
		sub, err := natsConn.Subscribe(topic, forward)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		c.subscriptions = append(c.subscriptions, sub)
	}

	return nil
}

// readPump keeps the connection alive and detects peer disconnects.
// Incoming messages carry no meaning on this endpoint and are discarded.
func (c *runEventClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error", "run_id", c.runID, "error", err)
			}
			break
		}
	}
}

// writePump pumps events to the WebSocket connection
func (c *runEventClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *runEventClient) closeConnection() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}

	c.conn.Close()

	c.log.Info("websocket disconnected", "run_id", c.runID)
}
