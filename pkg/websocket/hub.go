package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Message is the envelope every hub broadcast is wrapped in.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins. Adjust this in production!
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans leaderboard changes out to clients watching a board. Rooms are
// keyed by "category:difficulty".
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	board string
}

// Run listens on the register and unregister channels and keeps the room
// maps consistent.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.board]; !exists {
				h.rooms[client.board] = make(map[*Client]bool)
				log.Printf("Created room for board %s", client.board)
			}
			h.rooms[client.board][client] = true
			log.Printf("Client %p watching board %s (%d total)", client, client.board, len(h.rooms[client.board]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.board]; exists {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.board)
					}
					log.Printf("Client %p left board %s", client, client.board)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastMessage marshals the payload and queues it for every client
// watching the board.
func (h *Hub) BroadcastMessage(board, messageType string, data interface{}) {
	msg := Message{Type: messageType, Data: data}
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[board]))
	for client := range h.rooms[board] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- messageBytes:
		default:
			log.Printf("Send channel full for client %p; unregistering", client)
			h.unregister <- client
		}
	}
}

// HandleWebSocket upgrades the connection and subscribes the client to
// the board named by the route variables.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := vars["category"]
	difficulty := vars["difficulty"]
	if category == "" || difficulty == "" {
		http.Error(w, "Missing board key", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		board: category + ":" + difficulty,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; subscribers are read-only. It exists
// to service pongs and to detect the peer closing.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Error writing to client %p: %v", c, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
