package network

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo para aguardar por uma resposta de pong do cliente.
	pongWait = 60 * time.Second

	// Frequência com que enviamos pings para o cliente. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Buffer de saída por cliente. A 60 Hz são uns 4 segundos de estado.
	sendBuffer = 256
)

// Client é a representação de um jogador conectado do ponto de vista do servidor.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	log  *logrus.Entry

	// O Hub e as salas colocam mensagens aqui; writeLoop as envia.
	send chan Message

	// mu protege closed e o fechamento de send.
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		conn: conn,
		hub:  hub,
		send: make(chan Message, sendBuffer),
		log:  hub.log.WithFields(logrus.Fields{"conn_id": id, "remote": conn.RemoteAddr().String()}),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Join coloca o cliente no grupo de broadcast da sala.
func (c *Client) Join(roomID string) { c.hub.join(roomID, c) }

func (c *Client) Leave(roomID string) { c.hub.leave(roomID, c) }

// Emit envia um evento só para este cliente. Não bloqueia.
func (c *Client) Emit(event string, payload any) {
	msg, err := NewMessage(event, payload)
	if err != nil {
		c.log.WithError(err).Error("emit")
		return
	}
	c.Send(msg)
}

// Send enfileira msg. Retorna false se o cliente já saiu ou se o buffer está
// cheio; nesse caso a mensagem é descartada.
func (c *Client) Send(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.log.WithField("type", msg.Type).Warn("send buffer full, dropping message")
		return false
	}
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// close fecha o canal send, o que faz writeLoop encerrar a conexão.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readLoop() {
	// Garante que a limpeza ocorrerá quando o loop terminar.
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("unexpected close")
			}
			return
		}
		if !c.hub.deliver(clientMessage{client: c, msg: msg}) {
			return
		}
	}
}

// writeLoop bombeia mensagens do canal 'send' do cliente para a conexão WebSocket.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// O Hub fechou o canal: o cliente foi desregistrado.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.WithError(err).Debug("write failed")
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
