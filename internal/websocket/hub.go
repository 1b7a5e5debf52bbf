package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/pkg/document"

	"github.com/redis/go-redis/v9"
)

// StatusUpdate is the frame pushed when a record's document status
// changes.
type StatusUpdate struct {
	NoticeId string          `json:"noticeId"`
	Status   document.Status `json:"status"`
}

type Hub struct {
	// Registered clients map: ClientID -> list of connections (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Optional.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ClientID] = append(h.clients[client.ClientID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ClientID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ClientID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ClientID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ClientID]) == 0 {
					delete(h.clients, client.ClientID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"client_id": client.ClientID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendStatus pushes a document status update to every connection a
// client has, here and on other instances via Redis.
func (h *Hub) SendStatus(clientID string, update StatusUpdate) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document_status",
		"data": update,
	})

	h.mu.RLock()
	clients, localFound := h.clients[clientID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Unregister owns the close; closing here too would
				// double-close the channel and panic Run.
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"client_id": clientID})
				h.unregister <- client
			}
		}
	}

	// Other instances may hold connections for the same client.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_client_id": clientID,
			"message":          json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to cluster_events and delivers messages
	// for clients it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetClientID string          `json:"target_client_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetClientID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					h.unregister <- client
				}
			}
		}
	}
}
