package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/goroutine"
)

// Hub управляет всеми WebSocket клиентами. Уведомления сюда попадают уже
// сохранёнными в БД, хаб отвечает только за живую доставку.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	// userID == nil означает рассылку всем подключённым клиентам.
	userID  *uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			if msg.userID != nil {
				h.sendToUser(*msg.userID, msg.payload)
			} else {
				h.sendToAll(msg.payload)
			}
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToUser отправляет событие всем соединениям пользователя.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	raw, err := encode(event, data)
	if err != nil {
		return err
	}
	h.broadcast <- message{userID: &userID, payload: raw}
	return nil
}

// BroadcastToAll отправляет событие всем подключённым клиентам. Используется
// для уведомлений без адресата (user_id = NULL в БД).
func (h *Hub) BroadcastToAll(event string, data any) error {
	raw, err := encode(event, data)
	if err != nil {
		return err
	}
	h.broadcast <- message{payload: raw}
	return nil
}

// encode собирает сообщение по контракту WebSocket API: поле "type" содержит
// имя события, "data" — полезную нагрузку.
func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	return raw, nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) sendToUser(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.clients[userID], payload)
}

func (h *Hub) sendToAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		h.deliver(clients, payload)
	}
}

func (h *Hub) deliver(clients map[*Client]struct{}, payload []byte) {
	for client := range clients {
		select {
		case client.send <- payload:
		default:
			// Медленного клиента отключаем, не блокируя остальных.
			goroutine.SafeGo(client.Close)
		}
	}
}
