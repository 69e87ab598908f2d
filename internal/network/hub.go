package network

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// clientMessage empacota uma mensagem com o cliente que a enviou.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub mantém o conjunto de clientes ativos, os grupos de sala e roteia
// eventos para o handler.
type Hub struct {
	// Acessado SOMENTE pela goroutine do Hub.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage
	done       chan struct{}

	handler EventHandler
	log     *logrus.Entry

	// Os grupos de sala são usados pelas goroutines das salas, por isso têm lock próprio.
	roomsMu sync.RWMutex
	rooms   map[string]map[*Client]struct{}
}

func NewHub(handler EventHandler, log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		done:       make(chan struct{}),
		handler:    handler,
		log:        log.WithField("component", "Hub"),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// Run processa registros e mensagens até ctx ser cancelado. Ao sair, fecha todos os clientes.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithField("clients", len(h.clients)).Debug("client registered")
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.leaveAll(client)
				h.handler.OnDisconnect(client)
			}

		case cm := <-h.incoming:
			// O Hub não se importa com o conteúdo da mensagem.
			h.handler.OnMessage(cm.client, cm.msg)

		case <-ctx.Done():
			h.log.WithField("clients", len(h.clients)).Info("hub stopping")
			for client := range h.clients {
				client.close()
			}
			return
		}
	}
}

// EmitToRoom serializa uma vez e entrega a todos os membros da sala.
func (h *Hub) EmitToRoom(roomID, event string, payload any) {
	msg, err := NewMessage(event, payload)
	if err != nil {
		h.log.WithError(err).Error("emit to room")
		return
	}
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	for c := range h.rooms[roomID] {
		c.Send(msg)
	}
}

// RoomSize conta quantos clientes estão no grupo da sala.
func (h *Hub) RoomSize(roomID string) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) join(roomID string, c *Client) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(roomID string, c *Client) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	h.removeMember(roomID, c)
}

func (h *Hub) leaveAll(c *Client) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	for roomID := range h.rooms {
		h.removeMember(roomID, c)
	}
}

// removeMember exige roomsMu travado.
func (h *Hub) removeMember(roomID string, c *Client) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) deliver(cm clientMessage) bool {
	select {
	case h.incoming <- cm:
		return true
	case <-h.done:
		return false
	}
}
