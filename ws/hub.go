package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"tickethub/models"
)

type Client struct {
	Id   string
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans ticket change events out to connected dashboard clients. The
// feed is push-only: clients never send anything meaningful upstream.
type Hub struct {
	mu sync.RWMutex

	Clients        map[string]*Client // id -> client
	RegisterChan   chan *Client
	UnregisterChan chan *Client
	BroadcastChan  chan []byte
}

var Updates = &Hub{
	Clients:        map[string]*Client{},
	RegisterChan:   make(chan *Client),
	UnregisterChan: make(chan *Client),
	BroadcastChan:  make(chan []byte, 16),
}

// TicketEvent is the wire payload pushed to dashboard clients.
type TicketEvent struct {
	Kind   string         `json:"kind"` // added | modified | removed
	Ticket *models.Ticket `json:"ticket"`
}

func (h *Hub) Start() {
	for {
		select {
		case client := <-h.RegisterChan:
			h.mu.Lock()
			h.Clients[client.Id] = client
			h.mu.Unlock()

		case client := <-h.UnregisterChan:
			h.mu.Lock()
			if _, ok := h.Clients[client.Id]; ok {
				delete(h.Clients, client.Id)
				close(client.Send)
			}
			h.mu.Unlock()

		case data := <-h.BroadcastChan:
			h.mu.RLock()
			for _, c := range h.Clients {
				select {
				case c.Send <- data:
				default:
					// slow client, drop the frame
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastTicket pushes one ticket change event to every connected client.
func (h *Hub) BroadcastTicket(kind string, ticket *models.Ticket) {
	data, err := json.Marshal(&TicketEvent{Kind: kind, Ticket: ticket})
	if err != nil {
		log.Printf("[WS] Error encoding ticket event: %v", err)
		return
	}
	h.BroadcastChan <- data
}

func (c *Client) writePump() {
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// Handler serves one dashboard subscriber connection.
func Handler(conn *websocket.Conn) {
	client := &Client{Id: uuid.NewString(), Conn: conn, Send: make(chan []byte, 16)}
	Updates.RegisterChan <- client
	defer func() { Updates.UnregisterChan <- client }()
	go client.writePump()

	// Drain until the client disconnects; inbound frames are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
