// Bot de carga: entra na fila, joga partidas seguindo a bola e volta pra fila.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pongmatch/internal/game/entity"
	"pongmatch/internal/game/pong"
	"pongmatch/internal/network"
	"pongmatch/internal/services/cluster"
	"pongmatch/internal/session/message"
)

type bot struct {
	conn     *websocket.Conn
	log      *logrus.Entry
	deadzone float64
	throttle time.Duration

	roomID   string
	player   int
	lastMove time.Time
	games    int
	maxGames int
}

func main() {
	url := flag.String("url", envOr("PONG_URL", "ws://localhost:3000/game"), "endereço websocket do servidor")
	games := flag.Int("games", 0, "partidas antes de sair (0 = infinito)")
	deadzone := flag.Float64("deadzone", 10, "distância da bola ao centro da raquete tolerada antes de mover")
	throttle := flag.Duration("throttle", 40*time.Millisecond, "intervalo mínimo entre comandos de movimento")
	consulAddrs := flag.String("consul", os.Getenv("PONG_CONSUL_ADDR"), "nós do Consul; quando definido, o servidor é descoberto por lá")
	service := flag.String("service", "pong-game", "nome do serviço no Consul")
	path := flag.String("path", "/game", "caminho websocket usado com -consul")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *consulAddrs != "" {
		addr, err := discover(*consulAddrs, *service, log)
		if err != nil {
			log.WithError(err).Fatal("descoberta falhou")
		}
		*url = "ws://" + addr + *path
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.WithError(err).Fatal("Connection FAIL")
	}
	defer conn.Close()

	b := &bot{
		conn:     conn,
		log:      log.WithField("bot", conn.LocalAddr().String()),
		deadzone: *deadzone,
		throttle: *throttle,
		maxGames: *games,
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.play(); err != nil {
			b.log.WithError(err).Warn("conexão encerrada")
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		b.log.Info("interrupção recebida, fechando conexão")
		b.hangUp(done, time.Second)
	}
}

// hangUp manda o close frame e espera play terminar. Se o servidor não
// responder dentro de wait, a conexão é fechada à força.
func (b *bot) hangUp(done <-chan struct{}, wait time.Duration) {
	// WriteControl pode rodar junto com os WriteJSON de play.
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	b.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(wait))
	select {
	case <-done:
	case <-time.After(wait):
		b.conn.Close()
		<-done
	}
}

func (b *bot) play() error {
	if err := b.send(message.JoinQueue, nil); err != nil {
		return err
	}
	b.log.Info("na fila")

	for {
		var msg network.Message
		if err := b.conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Type {
		case message.MatchFound:
			var p message.MatchFoundPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return err
			}
			b.roomID, b.player = p.RoomID, p.PlayerNumber
			b.log.WithFields(logrus.Fields{"room": p.RoomID, "player": p.PlayerNumber}).Info("partida encontrada")

		case message.GameStateUpdate:
			var s pong.State
			if err := json.Unmarshal(msg.Payload, &s); err != nil {
				return err
			}
			if err := b.follow(s); err != nil {
				return err
			}

		case message.GameEnded, message.MatchCancelled:
			b.log.WithField("payload", string(msg.Payload)).Info(msg.Type)
			b.roomID, b.player = "", 0
			b.games++
			if b.maxGames > 0 && b.games >= b.maxGames {
				return nil
			}
			if err := b.send(message.JoinQueue, nil); err != nil {
				return err
			}
		}
	}
}

// follow move a raquete do bot na direção da bola, um passo por vez.
func (b *bot) follow(s pong.State) error {
	if b.roomID == "" || time.Since(b.lastMove) < b.throttle {
		return nil
	}
	paddle := s.Player1
	if b.player == 2 {
		paddle = s.Player2
	}

	diff := s.Ball.Y - (paddle.Y + paddle.H/2)
	var dir entity.Direction
	switch {
	case diff < -b.deadzone:
		dir = entity.Up
	case diff > b.deadzone:
		dir = entity.Down
	default:
		return nil
	}

	b.lastMove = time.Now()
	return b.send(message.MovePlayer, message.MovePlayerPayload{RoomID: b.roomID, Player: b.player, Direction: string(dir)})
}

func (b *bot) send(event string, payload any) error {
	msg, err := network.NewMessage(event, payload)
	if err != nil {
		return err
	}
	return b.conn.WriteJSON(msg)
}

func discover(addrs, service string, log *logrus.Logger) (string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr, err := cluster.NewConsulManager(ctx, addrs, log)
	if err != nil {
		return "", err
	}
	return cluster.Discover(mgr, service)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
