package network

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server promove requisições HTTP para WebSocket e as entrega ao Hub.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewServer recebe o EventHandler que será injetado no Hub.
func NewServer(handler EventHandler, log logrus.FieldLogger) *Server {
	return &Server{
		hub: NewHub(handler, log),
		upgrader: websocket.Upgrader{
			// O cliente web é servido de outra origem.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.WithField("component", "Server"),
	}
}

// Hub é o Broadcaster usado pelas salas.
func (s *Server) Hub() *Hub { return s.hub }

// Run bloqueia rodando o Hub até ctx ser cancelado.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(conn, s.hub)
	if !s.hub.registerClient(client) {
		conn.Close()
		return
	}

	go client.writeLoop()
	go client.readLoop()
}
