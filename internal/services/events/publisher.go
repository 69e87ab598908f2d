// Package events publica o ciclo de vida das partidas no NATS para consumidores
// externos (placar, estatísticas). Nada aqui é necessário para o jogo rodar.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Assuntos relativos ao prefixo configurado.
const (
	SubjectMatchFound     = "match.found"
	SubjectMatchStarted   = "match.started"
	SubjectMatchEnded     = "match.ended"
	SubjectMatchCancelled = "match.cancelled"
)

// MatchEvent é o corpo JSON de todos os assuntos.
type MatchEvent struct {
	RoomID  string    `json:"roomId"`
	Players [2]string `json:"players"`
	Winner  string    `json:"winner,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Score   [2]int    `json:"score"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(subject string, ev MatchEvent)
}

// Nop descarta tudo. É o padrão quando o NATS está desabilitado.
type Nop struct{}

func (Nop) Publish(string, MatchEvent) {}

// NATSPublisher publica de forma fire-and-forget: falhas são só logadas.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *logrus.Entry
}

// Connect abre a conexão com reconexão infinita.
func Connect(url, prefix, name string, log *logrus.Entry) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.WithField("url", c.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	log.WithField("url", nc.ConnectedUrl()).Info("connected to nats")
	return &NATSPublisher{conn: nc, prefix: prefix, log: log}, nil
}

func (p *NATSPublisher) Publish(subject string, ev MatchEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.WithError(err).Error("marshal match event")
		return
	}
	full := qualify(p.prefix, subject)
	if err := p.conn.Publish(full, data); err != nil {
		p.log.WithError(err).WithField("subject", full).Warn("publish match event")
	}
}

// Healthy é usado pelo /health.
func (p *NATSPublisher) Healthy() error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats status %s", p.conn.Status())
	}
	return nil
}

// Close esvazia as mensagens pendentes antes de fechar.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func qualify(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}
