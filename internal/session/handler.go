package session

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"pongmatch/internal/network"
	"pongmatch/internal/services/gameroom"
)

// CommandHandlerFunc define a assinatura para todas as funções que tratam eventos do cliente.
type CommandHandlerFunc func(h *GameHandler, conn gameroom.Conn, payload json.RawMessage)

// RoomService é a parte do RoomManager usada pela sessão.
type RoomService interface {
	RouteInput(roomID string, player int, direction string)
	Pause(roomID string)
	Resume(roomID string)
	HandleDisconnect(c gameroom.Conn)
	RoomOf(connID string) (string, bool)
}

type Queue interface {
	Enqueue(c gameroom.Conn) bool
}

// GameHandler implementa network.EventHandler: traduz eventos do protocolo em
// chamadas para a fila e para o RoomManager.
type GameHandler struct {
	rooms  RoomService
	queue  Queue
	router map[string]CommandHandlerFunc
	log    *logrus.Entry
}

func NewGameHandler(rooms RoomService, queue Queue, log logrus.FieldLogger) *GameHandler {
	h := &GameHandler{
		rooms:  rooms,
		queue:  queue,
		router: make(map[string]CommandHandlerFunc),
		log:    log.WithField("component", "GameHandler"),
	}
	h.registerQueueHandlers()
	h.registerMatchHandlers()
	return h
}

// --- Implementação da Interface network.EventHandler ---

// OnConnect não faz nada além de logar: o jogador só existe para o jogo depois do joinQueue.
func (h *GameHandler) OnConnect(c *network.Client) {
	h.log.WithFields(logrus.Fields{"conn_id": c.ID(), "remote": c.RemoteAddr()}).Info("client connected")
}

func (h *GameHandler) OnDisconnect(c *network.Client) {
	h.log.WithField("conn_id", c.ID()).Info("client disconnected")
	h.rooms.HandleDisconnect(c)
}

func (h *GameHandler) OnMessage(c *network.Client, msg network.Message) {
	h.dispatch(c, msg)
}

func (h *GameHandler) dispatch(conn gameroom.Conn, msg network.Message) {
	handler, ok := h.router[msg.Type]
	if !ok {
		h.log.WithFields(logrus.Fields{"conn_id": conn.ID(), "type": msg.Type}).Debug("unknown event ignored")
		return
	}
	handler(h, conn, msg.Payload)
}
