// Cliente de terminal: entra na fila e joga pelo teclado.
//
//	setas ou w/s  movem a raquete
//	p / r         pausa e retoma
//	j             volta pra fila depois de uma partida
//	q / Esc       sai
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gdamore/tcell"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pongmatch/internal/game/entity"
	"pongmatch/internal/game/pong"
	"pongmatch/internal/network"
	"pongmatch/internal/session/message"
)

const (
	paddleSymbol = 0x2588
	ballSymbol   = 0x25CF
	netSymbol    = 0x2502
)

type game struct {
	screen tcell.Screen
	conn   *websocket.Conn
	court  pong.Settings

	roomID string
	player int
	state  *pong.State
	status string
}

func main() {
	url := flag.String("url", "ws://localhost:3000/game", "endereço websocket do servidor")
	flag.Parse()

	log := logrus.New()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.WithError(err).Fatal("não foi possível conectar ao servidor")
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.WithError(err).Fatal("terminal indisponível")
	}
	if err := screen.Init(); err != nil {
		log.WithError(err).Fatal("terminal indisponível")
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))

	g := &game{screen: screen, conn: conn, court: pong.DefaultSettings()}
	err = g.loop()
	screen.Fini()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *game) loop() error {
	go g.readLoop()

	g.joinQueue()
	g.draw()

	for {
		switch ev := g.screen.PollEvent().(type) {
		case *tcell.EventResize:
			g.screen.Sync()
			g.draw()

		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case error:
				return fmt.Errorf("desconectado: %w", data)
			case network.Message:
				g.apply(data)
				g.draw()
			}

		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				g.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			case ev.Key() == tcell.KeyUp, ev.Rune() == 'w':
				g.move(entity.Up)
			case ev.Key() == tcell.KeyDown, ev.Rune() == 's':
				g.move(entity.Down)
			case ev.Rune() == 'p':
				g.roomCommand(message.PauseGame)
			case ev.Rune() == 'r':
				g.roomCommand(message.ResumeGame)
			case ev.Rune() == 'j':
				if g.roomID == "" {
					g.joinQueue()
					g.draw()
				}
			}
		}
	}
}

// readLoop repassa cada frame do servidor pro loop de eventos da tela.
func (g *game) readLoop() {
	for {
		var msg network.Message
		if err := g.conn.ReadJSON(&msg); err != nil {
			g.screen.PostEvent(tcell.NewEventInterrupt(err))
			return
		}
		g.screen.PostEvent(tcell.NewEventInterrupt(msg))
	}
}

func (g *game) apply(msg network.Message) {
	switch msg.Type {
	case message.MatchFound:
		var p message.MatchFoundPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			g.roomID, g.player = p.RoomID, p.PlayerNumber
			g.status = fmt.Sprintf("Partida encontrada! Você é o jogador %d", p.PlayerNumber)
		}
	case message.StartingGame, message.GameStateUpdate:
		var s pong.State
		if json.Unmarshal(msg.Payload, &s) == nil {
			g.state = &s
			if msg.Type == message.StartingGame {
				g.status = "Preparar..."
			} else {
				g.status = ""
			}
		}
	case message.GamePaused:
		g.status = "Pausado (r para retomar)"
	case message.GameResumed:
		g.status = ""
	case message.GameEnded:
		g.roomID, g.player = "", 0
		var p message.GameEndedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			g.status = "Fim de jogo (payload inválido: " + err.Error() + ")"
			return
		}
		switch {
		case p.Winner != nil:
			g.status = "Fim de jogo: " + *p.Winner + " venceu"
		case p.Reason != "":
			g.status = "Fim de jogo: " + p.Reason
		default:
			g.status = "Fim de jogo"
		}
		g.status += " (j para jogar de novo, q para sair)"
	case message.MatchCancelled:
		g.roomID, g.player = "", 0
		var p message.MatchCancelledPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			g.status = "Partida cancelada (payload inválido: " + err.Error() + ")"
			return
		}
		g.status = "Partida cancelada: " + p.Reason + " (j para voltar à fila)"
	}
}

func (g *game) joinQueue() {
	g.send(message.JoinQueue, nil)
	g.state = nil
	g.status = "Procurando oponente..."
}

func (g *game) move(dir entity.Direction) {
	if g.roomID == "" {
		return
	}
	g.send(message.MovePlayer, message.MovePlayerPayload{RoomID: g.roomID, Player: g.player, Direction: string(dir)})
}

func (g *game) roomCommand(event string) {
	if g.roomID == "" {
		return
	}
	g.send(event, message.RoomPayload{RoomID: g.roomID})
}

func (g *game) send(event string, payload any) {
	msg, err := network.NewMessage(event, payload)
	if err != nil {
		return
	}
	if err := g.conn.WriteJSON(msg); err != nil {
		g.status = "erro de envio: " + err.Error()
	}
}

// draw escala a quadra do servidor para o tamanho atual do terminal.
// A última linha fica reservada para o status.
func (g *game) draw() {
	s := g.screen
	s.Clear()
	width, height := s.Size()
	rows := height - 1
	if width <= 0 || rows <= 0 {
		s.Show()
		return
	}

	sx := float64(width) / g.court.Width
	sy := float64(rows) / g.court.Height
	col := func(x float64) int { return clamp(int(x*sx), 0, width-1) }
	row := func(y float64) int { return clamp(int(y*sy), 0, rows-1) }

	for r := 0; r < rows; r++ {
		s.SetContent(width/2, r, netSymbol, nil, tcell.StyleDefault)
	}

	if st := g.state; st != nil {
		for _, p := range []pong.PaddleState{st.Player1, st.Player2} {
			top, bottom := row(p.Y), row(p.Y+p.H)
			for r := top; r <= bottom; r++ {
				s.SetContent(col(p.X), r, paddleSymbol, nil, tcell.StyleDefault)
			}
		}
		s.SetContent(col(st.Ball.X), row(st.Ball.Y), ballSymbol, nil, tcell.StyleDefault)

		drawText(s, width/4, 0, strconv.Itoa(st.Player1.Score))
		drawText(s, width*3/4, 0, strconv.Itoa(st.Player2.Score))
	}

	drawText(s, 0, height-1, g.status)
	s.Show()
}

func drawText(s tcell.Screen, x, y int, text string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	i := 0
	for _, r := range text {
		s.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
