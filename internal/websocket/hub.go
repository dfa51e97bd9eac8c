package websocket

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// PurchaseAlert is pushed to every connected admin dashboard when
// reconciliation records a fresh purchase.
type PurchaseAlert struct {
	ItemName    string `json:"item_name"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	Anonymous   bool   `json:"anonymous"`
}

type Hub struct {
	Clients        map[*Client]bool
	Register       chan *Client
	Unregister     chan *Client
	BroadcastAlert chan PurchaseAlert
}

func NewHub() *Hub {
	return &Hub{
		Clients:        make(map[*Client]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		BroadcastAlert: make(chan PurchaseAlert, 16),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			log.Printf("WebSocket client registered (%d connected)", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				log.Printf("WebSocket client unregistered (%d connected)", len(h.Clients))
			}

		case alert := <-h.BroadcastAlert:
			jsonData, err := json.Marshal(alert)
			if err != nil {
				log.Println("Failed to marshal purchase alert:", err)
				continue
			}

			for client := range h.Clients {
				select {
				case client.Send <- jsonData:
				default:
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}

// Notify hands an alert to the hub without blocking the caller. Alerts are
// best-effort: if the hub's buffer is full the alert is dropped, never the
// purchase.
func (h *Hub) Notify(alert PurchaseAlert) {
	select {
	case h.BroadcastAlert <- alert:
	default:
		log.Println("Purchase alert dropped, hub busy")
	}
}
