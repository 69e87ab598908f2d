package gameroom

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"pongmatch/internal/game/entity"
	"pongmatch/internal/game/pong"
	"pongmatch/internal/services/events"
	"pongmatch/internal/session/message"
)

type Phase string

const (
	PhaseWaitingToStart Phase = "waiting_to_start"
	PhaseCountingDown   Phase = "counting_down"
	PhaseRunning        Phase = "running"
	PhasePaused         Phase = "paused"
	PhaseEnded          Phase = "ended"
)

// Config vale para todas as salas criadas por um RoomManager.
type Config struct {
	Countdown    time.Duration
	TickInterval time.Duration
	Game         pong.Settings
}

func DefaultConfig() Config {
	return Config{
		Countdown:    5 * time.Second,
		TickInterval: time.Second / 60,
		Game:         pong.DefaultSettings(),
	}
}

// Result é enviado uma única vez ao RoomManager quando a sala termina.
type Result struct {
	RoomID    string
	Players   [2]string
	Winner    pong.Side
	Reason    string
	Cancelled bool
	Score     [2]int
}

// Info é o retrato de uma sala exposto pela API de status.
type Info struct {
	RoomID    string    `json:"roomId"`
	Phase     Phase     `json:"phase"`
	Players   [2]string `json:"players"`
	Score     [2]int    `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Mensagens para a goroutine da sala ---
type inputAction struct {
	player int
	dir    entity.Direction
}
type pauseAction struct{}
type resumeAction struct{}
type abortAction struct {
	leaverID string
	reason   string
}
type infoRequest struct{ reply chan Info }

// GameRoom é o ator de uma partida. Todo o estado abaixo de `sim` só é tocado
// pela goroutine de Run; o resto do mundo fala com ela pelo canal incoming.
type GameRoom struct {
	ID        string
	CreatedAt time.Time

	conns    [2]Conn
	sim      *pong.Simulation
	cfg      Config
	out      Broadcaster
	pub      events.Publisher
	finished chan<- Result
	log      *logrus.Entry

	incoming chan any
	start    chan struct{}
	quit     chan struct{}
	halt     <-chan struct{}
	phase    atomic.Value

	countdown *time.Timer
	ticker    *time.Ticker
}

// NewGameRoom cria a sala parada em WaitingToStart. a é o jogador 1 (esquerda).
func NewGameRoom(id string, a, b Conn, cfg Config, out Broadcaster, pub events.Publisher, finished chan<- Result, log *logrus.Entry) *GameRoom {
	gr := &GameRoom{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		conns:     [2]Conn{a, b},
		sim:       pong.New(cfg.Game),
		cfg:       cfg,
		out:       out,
		pub:       pub,
		finished:  finished,
		log:       log.WithField("room_id", id),
		incoming:  make(chan any, 32),
		start:     make(chan struct{}),
		quit:      make(chan struct{}),
	}
	gr.setPhase(PhaseWaitingToStart)
	return gr
}

// StartGame libera a contagem regressiva. Deve ser chamado uma única vez.
func (gr *GameRoom) StartGame() {
	close(gr.start)
}

// Run é o loop do ator. Termina quando a sala chega em Ended.
func (gr *GameRoom) Run(ctx context.Context) {
	gr.halt = ctx.Done()
	gr.log.Debug("room goroutine started, waiting for start signal")
	defer func() {
		gr.stopTimers()
		gr.log.Debug("room goroutine stopped")
	}()

	startC := (<-chan struct{})(gr.start)
	for gr.Phase() != PhaseEnded {
		select {
		case <-startC:
			startC = nil
			gr.beginCountdown()
		case <-gr.countdownC():
			gr.countdown = nil
			gr.beginMatch()
		case <-gr.tickC():
			gr.tick()
		case action := <-gr.incoming:
			gr.handle(action)
		case <-ctx.Done():
			gr.finish(pong.NoSide, message.ReasonServerShutdown, "")
		}
	}
}

// --- MÉTODOS PARA INTERAÇÃO EXTERNA ---

func (gr *GameRoom) ApplyInput(player int, dir entity.Direction) {
	gr.forward(inputAction{player: player, dir: dir})
}

func (gr *GameRoom) Pause() { gr.forward(pauseAction{}) }

func (gr *GameRoom) Resume() { gr.forward(resumeAction{}) }

// Abort encerra a partida sem vencedor. leaverID, se não vazio, não recebe gameEnded.
func (gr *GameRoom) Abort(leaverID, reason string) {
	gr.forward(abortAction{leaverID: leaverID, reason: reason})
}

// Info pergunta à goroutine da sala pelo seu estado. false se a sala já terminou.
func (gr *GameRoom) Info() (Info, bool) {
	reply := make(chan Info, 1)
	if !gr.forward(infoRequest{reply: reply}) {
		return Info{}, false
	}
	select {
	case info := <-reply:
		return info, true
	case <-gr.quit:
		return Info{}, false
	}
}

func (gr *GameRoom) Phase() Phase {
	return gr.phase.Load().(Phase)
}

func (gr *GameRoom) IsFinished() bool {
	return gr.Phase() == PhaseEnded
}

// Done é fechado quando a sala termina.
func (gr *GameRoom) Done() <-chan struct{} {
	return gr.quit
}

func (gr *GameRoom) Players() [2]string {
	return [2]string{gr.conns[0].ID(), gr.conns[1].ID()}
}

func (gr *GameRoom) forward(action any) bool {
	select {
	case gr.incoming <- action:
		return true
	case <-gr.quit:
		return false
	}
}

func (gr *GameRoom) setPhase(p Phase) {
	gr.phase.Store(p)
}

func (gr *GameRoom) countdownC() <-chan time.Time {
	if gr.countdown == nil {
		return nil
	}
	return gr.countdown.C
}

func (gr *GameRoom) tickC() <-chan time.Time {
	if gr.ticker == nil {
		return nil
	}
	return gr.ticker.C
}

func (gr *GameRoom) startTicker() {
	gr.ticker = time.NewTicker(gr.cfg.TickInterval)
}

func (gr *GameRoom) stopTicker() {
	if gr.ticker != nil {
		gr.ticker.Stop()
		gr.ticker = nil
	}
}

func (gr *GameRoom) stopTimers() {
	if gr.countdown != nil {
		gr.countdown.Stop()
		gr.countdown = nil
	}
	gr.stopTicker()
}
