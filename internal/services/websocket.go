package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Role string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %d disconnected", client.ID)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToUser sends a message to a specific user. A full lock is
// required: dropping a slow consumer mutates the client map.
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.ID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// BroadcastToRole sends a message to all users of a specific role
func (h *Hub) BroadcastToRole(role string, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.Role == role {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// WebSocket message types
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ApplicationReceived notifies the request owner of a new candidate
type ApplicationReceived struct {
	RequestID uint   `json:"requestId"`
	DriverID  uint   `json:"driverId"`
	Driver    string `json:"driver"`
}

// DriverSelected notifies a driver that the client picked them
type DriverSelected struct {
	RequestID uint `json:"requestId"`
	DriverID  uint `json:"driverId"`
}

// BookingFinalized notifies the client that the driver confirmed
type BookingFinalized struct {
	RequestID uint   `json:"requestId"`
	BookingID uint   `json:"bookingId"`
	DriverID  uint   `json:"driverId"`
	Status    string `json:"status"`
}

// BookingStatusChanged notifies both parties of a status transition
type BookingStatusChanged struct {
	BookingID uint   `json:"bookingId"`
	Status    string `json:"status"`
}

// ChatMessage is relayed verbatim between a booking's two parties. The
// server keeps no chat history.
type ChatMessage struct {
	To   uint   `json:"to"`
	From uint   `json:"from"`
	Body string `json:"body"`
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Role: role,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling WebSocket message: %v", err)
			continue
		}

		switch wsMessage.Type {
		case "chat":
			c.handleChat(wsMessage.Data)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// handleChat relays a chat message to its recipient
func (c *Client) handleChat(data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	var msg ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Invalid chat message from client %d: %v", c.ID, err)
		return
	}
	msg.From = c.ID

	out, err := json.Marshal(WebSocketMessage{Type: "chat", Data: msg})
	if err != nil {
		return
	}
	c.Hub.BroadcastToUser(msg.To, out)
}

// SendApplicationReceived notifies the client that a driver applied
func (hub *Hub) SendApplicationReceived(clientID uint, event ApplicationReceived) {
	hub.sendEvent(clientID, "application_received", event)
}

// SendDriverSelected notifies the driver that they were picked
func (hub *Hub) SendDriverSelected(driverID uint, event DriverSelected) {
	hub.sendEvent(driverID, "driver_selected", event)
}

// SendBookingFinalized notifies the client that the booking exists
func (hub *Hub) SendBookingFinalized(clientID uint, event BookingFinalized) {
	hub.sendEvent(clientID, "booking_finalized", event)
}

// SendBookingStatusChanged notifies a party of a booking status transition
func (hub *Hub) SendBookingStatusChanged(userID uint, event BookingStatusChanged) {
	hub.sendEvent(userID, "booking_status", event)
}

func (hub *Hub) sendEvent(userID uint, eventType string, event interface{}) {
	message := WebSocketMessage{
		Type: eventType,
		Data: event,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	hub.BroadcastToUser(userID, data)
}
