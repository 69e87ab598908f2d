package gameroom

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pongmatch/internal/game/entity"
	"pongmatch/internal/services/events"
	"pongmatch/internal/session/message"
)

// Dequeuer é a fila de espera, consultada quando quem desconecta não está em sala.
type Dequeuer interface {
	Remove(c Conn) bool
}

// RoomManager (o ator) é dono do registro de salas ativas.
type RoomManager struct {
	cfg   Config
	out   Broadcaster
	pub   events.Publisher
	queue Dequeuer
	log   *logrus.Entry

	rooms  map[string]*GameRoom
	byConn map[string]string

	requestCh chan any
	finished  chan Result
	stopped   chan struct{}
	running   sync.WaitGroup
}

func NewRoomManager(cfg Config, out Broadcaster, pub events.Publisher, log logrus.FieldLogger) *RoomManager {
	if pub == nil {
		pub = events.Nop{}
	}
	return &RoomManager{
		cfg:       cfg,
		out:       out,
		pub:       pub,
		log:       log.WithField("component", "RoomManager"),
		rooms:     make(map[string]*GameRoom),
		byConn:    make(map[string]string),
		requestCh: make(chan any),
		finished:  make(chan Result, 64),
		stopped:   make(chan struct{}),
	}
}

// AttachQueue liga a fila de espera. Chamar antes de Run.
func (rm *RoomManager) AttachQueue(q Dequeuer) {
	rm.queue = q
}

// --- Mensagens para o Ator RoomManager ---
type createRoomRequest struct {
	a, b  Conn
	reply chan string
}
type getRoomRequest struct {
	roomID string
	reply  chan *GameRoom
}
type roomOfRequest struct {
	connID string
	reply  chan string
}

// detachRequest tira a sala do registro, por id ou por participante.
type detachRequest struct {
	roomID string
	connID string
	reply  chan *GameRoom
}
type listRoomsRequest struct{ reply chan []*GameRoom }

// Run inicia o loop principal do ator. As salas herdam ctx.
func (rm *RoomManager) Run(ctx context.Context) {
	rm.log.Info("actor started")
	defer close(rm.stopped)

	for {
		select {
		case msg := <-rm.requestCh:
			rm.handle(ctx, msg)
		case res := <-rm.finished:
			rm.onFinished(res)
		case <-ctx.Done():
			rm.log.WithField("rooms", len(rm.rooms)).Info("actor stopping")
			return
		}
	}
}

func (rm *RoomManager) handle(ctx context.Context, msg any) {
	switch req := msg.(type) {
	case createRoomRequest:
		req.reply <- rm.createRoom(ctx, req.a, req.b)

	case getRoomRequest:
		req.reply <- rm.rooms[req.roomID]

	case roomOfRequest:
		// Uma sala que já emitiu gameEnded não prende mais o jogador, mesmo antes do Result chegar.
		roomID := rm.byConn[req.connID]
		if room, ok := rm.rooms[roomID]; ok && room.IsFinished() {
			roomID = ""
		}
		req.reply <- roomID

	case detachRequest:
		roomID := req.roomID
		if roomID == "" {
			roomID = rm.byConn[req.connID]
		}
		req.reply <- rm.teardown(roomID)

	case listRoomsRequest:
		list := make([]*GameRoom, 0, len(rm.rooms))
		for _, r := range rm.rooms {
			list = append(list, r)
		}
		req.reply <- list
	}
}

func (rm *RoomManager) createRoom(ctx context.Context, a, b Conn) string {
	roomID := uuid.NewString()
	room := NewGameRoom(roomID, a, b, rm.cfg, rm.out, rm.pub, rm.finished, rm.log.WithField("component", "GameRoom"))
	rm.rooms[roomID] = room

	for i, c := range []Conn{a, b} {
		rm.byConn[c.ID()] = roomID
		c.Join(roomID)
		c.Emit(message.MatchFound, message.MatchFoundPayload{RoomID: roomID, PlayerNumber: i + 1})
	}

	rm.running.Add(1)
	go func() {
		defer rm.running.Done()
		room.Run(ctx)
	}()
	room.StartGame()

	rm.log.WithFields(logrus.Fields{"room_id": roomID, "player1": a.ID(), "player2": b.ID()}).Info("room created")
	rm.pub.Publish(events.SubjectMatchFound, events.MatchEvent{RoomID: roomID, Players: room.Players()})
	return roomID
}

// teardown remove a sala do registro e tira os participantes do grupo de broadcast.
// Idempotente: devolve nil se a sala não existe mais.
func (rm *RoomManager) teardown(roomID string) *GameRoom {
	room, ok := rm.rooms[roomID]
	if !ok {
		return nil
	}
	delete(rm.rooms, roomID)
	for _, c := range room.conns {
		if rm.byConn[c.ID()] == roomID {
			delete(rm.byConn, c.ID())
		}
		c.Leave(roomID)
	}
	rm.log.WithField("room_id", roomID).Debug("room removed from registry")
	return room
}

func (rm *RoomManager) onFinished(res Result) {
	rm.teardown(res.RoomID)

	ev := events.MatchEvent{
		RoomID:  res.RoomID,
		Players: res.Players,
		Winner:  res.Winner.String(),
		Reason:  res.Reason,
		Score:   res.Score,
	}
	if res.Cancelled {
		rm.pub.Publish(events.SubjectMatchCancelled, ev)
		return
	}
	rm.pub.Publish(events.SubjectMatchEnded, ev)
}

// --- APIs Públicas do Ator ---

// Wait bloqueia até o ator parar e todas as salas terminarem.
func (rm *RoomManager) Wait() {
	<-rm.stopped
	rm.running.Wait()
}

// send entrega o pedido ao ator; false se ele já parou.
func (rm *RoomManager) send(req any) bool {
	select {
	case rm.requestCh <- req:
		return true
	case <-rm.stopped:
		return false
	}
}

// CreateRoom cria a sala para a e b (jogadores 1 e 2) e inicia a contagem.
// Retorna "" se o manager já parou.
func (rm *RoomManager) CreateRoom(a, b Conn) string {
	reply := make(chan string, 1)
	if !rm.send(createRoomRequest{a: a, b: b, reply: reply}) {
		return ""
	}
	return <-reply
}

func (rm *RoomManager) getRoom(roomID string) *GameRoom {
	reply := make(chan *GameRoom, 1)
	if !rm.send(getRoomRequest{roomID: roomID, reply: reply}) {
		return nil
	}
	return <-reply
}

func (rm *RoomManager) detach(roomID, connID string) *GameRoom {
	reply := make(chan *GameRoom, 1)
	if !rm.send(detachRequest{roomID: roomID, connID: connID, reply: reply}) {
		return nil
	}
	return <-reply
}

// RoomOf devolve a sala em que a conexão está jogando.
func (rm *RoomManager) RoomOf(connID string) (string, bool) {
	reply := make(chan string, 1)
	if !rm.send(roomOfRequest{connID: connID, reply: reply}) {
		return "", false
	}
	id := <-reply
	return id, id != ""
}

// RouteInput encaminha um passo de raquete. Sala desconhecida, sala fora de
// Running, jogador fora de {1,2} ou direção inválida: ignorado.
func (rm *RoomManager) RouteInput(roomID string, player int, direction string) {
	dir, ok := entity.ParseDirection(direction)
	if !ok {
		rm.log.WithFields(logrus.Fields{"room_id": roomID, "direction": direction}).Debug("input with malformed direction ignored")
		return
	}
	room := rm.getRoom(roomID)
	if room == nil {
		rm.log.WithField("room_id", roomID).Debug("input for unknown room ignored")
		return
	}
	room.ApplyInput(player, dir)
}

func (rm *RoomManager) Pause(roomID string) {
	if room := rm.lookup(roomID, "pause"); room != nil {
		room.Pause()
	}
}

func (rm *RoomManager) Resume(roomID string) {
	if room := rm.lookup(roomID, "resume"); room != nil {
		room.Resume()
	}
}

func (rm *RoomManager) lookup(roomID, op string) *GameRoom {
	room := rm.getRoom(roomID)
	if room == nil {
		rm.log.WithFields(logrus.Fields{"room_id": roomID, "op": op}).Debug("unknown room ignored")
	}
	return room
}

// HandleDisconnect encerra a partida de c, se houver, avisando o oponente.
// Sem sala, tira c da fila de espera.
func (rm *RoomManager) HandleDisconnect(c Conn) {
	room := rm.detach("", c.ID())
	if room == nil {
		if rm.queue != nil && rm.queue.Remove(c) {
			rm.log.WithField("conn_id", c.ID()).Debug("disconnected while waiting in queue")
		}
		return
	}
	rm.log.WithFields(logrus.Fields{"room_id": room.ID, "conn_id": c.ID()}).Info("participant disconnected")
	room.Abort(c.ID(), message.ReasonOpponentDisconnected)
}

// Teardown libera a sala. Se ela ainda estava em jogo, os participantes recebem
// gameEnded sem vencedor.
func (rm *RoomManager) Teardown(roomID string) {
	if room := rm.detach(roomID, ""); room != nil {
		room.Abort("", message.ReasonRoomClosed)
	}
}

// Room devolve o retrato de uma sala registrada.
func (rm *RoomManager) Room(roomID string) (Info, bool) {
	room := rm.getRoom(roomID)
	if room == nil {
		return Info{}, false
	}
	return room.Info()
}

// Rooms lista as salas registradas que ainda respondem.
func (rm *RoomManager) Rooms() []Info {
	reply := make(chan []*GameRoom, 1)
	if !rm.send(listRoomsRequest{reply: reply}) {
		return nil
	}
	var infos []Info
	for _, room := range <-reply {
		if info, ok := room.Info(); ok {
			infos = append(infos, info)
		}
	}
	return infos
}
