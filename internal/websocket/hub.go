package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/storyreel/api/internal/model"
)

// Topic name helpers. Subscribers attach either to a fill-in job or to a
// whole editing session.
func JobTopic(jobID string) string         { return "job:" + jobID }
func SessionTopic(sessionID string) string { return "session:" + sessionID }

// Client represents one WebSocket subscriber of a topic.
type Client struct {
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
}

// Hub maintains active WebSocket connections grouped by topic.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	// Audio bridges keyed by session topic, fed by inbound position reports.
	bridges map[string]*AudioBridge

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast to one topic.
type BroadcastMessage struct {
	Topic   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		bridges:    make(map[string]*AudioBridge),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
			log.Printf("Client subscribed to %s", client.Topic)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.Topic)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unsubscribed from %s", client.Topic)

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.Topic]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// CloseBridge detaches a session's audio bridge, if one is registered.
// Safe to call for sessions that never had a bridge.
func (h *Hub) CloseBridge(sessionID string) {
	h.mu.Lock()
	delete(h.bridges, SessionTopic(sessionID))
	h.mu.Unlock()
}

// Broadcast sends an arbitrary payload to all subscribers of a topic.
func (h *Hub) Broadcast(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", topic, err)
		return
	}
	h.broadcast <- &BroadcastMessage{Topic: topic, Message: data}
}

// BroadcastProgress sends a fill-in progress update to job subscribers.
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.Broadcast(JobTopic(jobID), model.WSProgressMessage{
		Type:        model.WSMessageTypeProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastItemUpdate pushes an applied item patch to session subscribers.
func (h *Hub) BroadcastItemUpdate(sessionID string, patch model.ItemPatch) {
	h.Broadcast(SessionTopic(sessionID), model.WSItemUpdateMessage{
		Type:   model.WSMessageTypeItemUpdate,
		ItemID: patch.ItemID,
		Patch:  patch,
	})
}

// BroadcastComplete sends a completion message to job subscribers.
func (h *Hub) BroadcastComplete(jobID string, result interface{}) {
	h.Broadcast(JobTopic(jobID), model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastError sends an error message to job subscribers.
func (h *Hub) BroadcastError(jobID string, code, message string) {
	h.Broadcast(JobTopic(jobID), model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: model.WSError{Code: code, Message: message},
	})
}

// HandleConnection handles a WebSocket connection subscribed to one topic.
func (h *Hub) HandleConnection(c *websocket.Conn, topic string) {
	client := &Client{
		Topic: topic,
		Conn:  c,
		Send:  make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case model.WSMessageTypePing:
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data

		case model.WSMessageTypeAudioPosition:
			var report model.WSAudioPositionMessage
			if err := json.Unmarshal(message, &report); err != nil {
				continue
			}
			h.mu.RLock()
			bridge := h.bridges[topic]
			h.mu.RUnlock()
			if bridge != nil {
				bridge.reportPosition(report.Position)
			}
		}
	}
}
