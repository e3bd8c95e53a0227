package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"civic-grant-be/internal/pkg/logger"
	"civic-grant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Hub fans workflow events out to websocket clients, keyed by session ID so
// several tabs can watch the same grant session.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Subscriber feeding the hub with workflow events.
	sub   message.Subscriber
	topic string

	logger logger.ILogger
}

func NewHub(sub message.Subscriber, topic string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		sub:        sub,
		topic:      topic,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.sub != nil {
		go h.consumeWorkflowEvents()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes one workflow event to every client watching the session.
func (h *Hub) Send(sessionID string, evt events.WorkflowEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "workflow_event",
		"data": evt,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	clients, found := h.clients[sessionID]
	h.mu.RUnlock()
	if !found {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// The unregister path owns channel closure; closing here too
			// would double-close on a slow client.
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
			h.unregister <- client
		}
	}
}

func (h *Hub) consumeWorkflowEvents() {
	messages, err := h.sub.Subscribe(context.Background(), h.topic)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to workflow events", map[string]interface{}{"error": err.Error()})
		return
	}

	for msg := range messages {
		var evt events.WorkflowEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			h.logger.Warn("Hub", "Dropping malformed workflow event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}
		h.Send(evt.SessionID, evt)
		msg.Ack()
	}
}
