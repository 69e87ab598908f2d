package queue

import (
	"context"

	"github.com/sirupsen/logrus"

	"pongmatch/internal/services/gameroom"
)

// Matcher cria a sala para um par. *gameroom.RoomManager implementa.
type Matcher interface {
	CreateRoom(a, b gameroom.Conn) string
}

// ============================================================================
// Mensagens do Ator
// ============================================================================

// actorMessage é a interface que todas as mensagens para o QueueMaster devem implementar.
type actorMessage interface {
	isActorMessage()
}

type enqueueRequest struct {
	conn  gameroom.Conn
	reply chan bool
}

func (enqueueRequest) isActorMessage() {}

type removeRequest struct {
	conn  gameroom.Conn
	reply chan bool
}

func (removeRequest) isActorMessage() {}

type sizeRequest struct{ reply chan int }

func (sizeRequest) isActorMessage() {}

// ============================================================================
// O Ator QueueMaster
// ============================================================================

// QueueMaster é a fila FIFO de conexões esperando partida. Sempre que há dois
// ou mais esperando, os dois mais antigos viram uma sala.
type QueueMaster struct {
	waiting []gameroom.Conn
	matcher Matcher

	requestCh chan actorMessage
	stopped   chan struct{}
	log       *logrus.Entry
}

func NewQueueMaster(matcher Matcher, log logrus.FieldLogger) *QueueMaster {
	return &QueueMaster{
		waiting:   make([]gameroom.Conn, 0),
		matcher:   matcher,
		requestCh: make(chan actorMessage),
		stopped:   make(chan struct{}),
		log:       log.WithField("component", "QueueMaster"),
	}
}

// Run inicia o loop principal do ator em sua própria goroutine.
func (m *QueueMaster) Run(ctx context.Context) {
	m.log.Info("actor started, waiting for players")
	defer close(m.stopped)

	for {
		select {
		case msg := <-m.requestCh:
			switch req := msg.(type) {
			case enqueueRequest:
				req.reply <- m.enqueue(req.conn)
			case removeRequest:
				req.reply <- m.remove(req.conn)
			case sizeRequest:
				req.reply <- len(m.waiting)
			}
		case <-ctx.Done():
			m.log.WithField("waiting", len(m.waiting)).Info("actor stopping")
			return
		}
	}
}

// --- APIs Públicas para Interagir com o Ator ---

// Enqueue coloca c no fim da fila e pareia se possível. Retorna false se c já
// estava na fila.
func (m *QueueMaster) Enqueue(c gameroom.Conn) bool {
	reply := make(chan bool, 1)
	if !m.send(enqueueRequest{conn: c, reply: reply}) {
		return false
	}
	return <-reply
}

// Remove tira c da fila, se estiver lá.
func (m *QueueMaster) Remove(c gameroom.Conn) bool {
	reply := make(chan bool, 1)
	if !m.send(removeRequest{conn: c, reply: reply}) {
		return false
	}
	return <-reply
}

func (m *QueueMaster) Size() int {
	reply := make(chan int, 1)
	if !m.send(sizeRequest{reply: reply}) {
		return 0
	}
	return <-reply
}

func (m *QueueMaster) send(msg actorMessage) bool {
	select {
	case m.requestCh <- msg:
		return true
	case <-m.stopped:
		return false
	}
}

// ============================================================================
// Lógica Interna
// ============================================================================

func (m *QueueMaster) enqueue(c gameroom.Conn) bool {
	if m.indexOf(c) >= 0 {
		m.log.WithField("conn_id", c.ID()).Debug("already queued")
		return false
	}
	m.waiting = append(m.waiting, c)
	m.log.WithFields(logrus.Fields{"conn_id": c.ID(), "size": len(m.waiting)}).Info("player added to match queue")
	m.tryPairing()
	return true
}

func (m *QueueMaster) remove(c gameroom.Conn) bool {
	i := m.indexOf(c)
	if i < 0 {
		return false
	}
	m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
	m.log.WithField("conn_id", c.ID()).Info("player removed from match queue")
	return true
}

func (m *QueueMaster) indexOf(c gameroom.Conn) int {
	for i, w := range m.waiting {
		if w.ID() == c.ID() {
			return i
		}
	}
	return -1
}

// tryPairing casa os dois mais antigos enquanto houver par. Conexões que caíram
// sem passar por Remove são descartadas aqui.
func (m *QueueMaster) tryPairing() {
	m.dropDisconnected()
	for len(m.waiting) >= 2 {
		a, b := m.waiting[0], m.waiting[1]
		m.waiting = m.waiting[2:]

		roomID := m.matcher.CreateRoom(a, b)
		m.log.WithFields(logrus.Fields{"player1": a.ID(), "player2": b.ID(), "room_id": roomID}).Info("match found")
	}
}

func (m *QueueMaster) dropDisconnected() {
	kept := m.waiting[:0]
	for _, c := range m.waiting {
		if c.Connected() {
			kept = append(kept, c)
			continue
		}
		m.log.WithField("conn_id", c.ID()).Debug("dropping disconnected player from queue")
	}
	m.waiting = kept
}
