package gameroom

import (
	"sync"
	"sync/atomic"
	"time"

	"pongmatch/internal/game/pong"
	"pongmatch/internal/logger"
	"pongmatch/internal/services/events"
)

type emitted struct {
	event   string
	payload any
}

// fakeHub faz o papel do network.Hub: grupos de sala e broadcast.
type fakeHub struct {
	mu      sync.Mutex
	members map[string]map[*fakeConn]bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{members: make(map[string]map[*fakeConn]bool)}
}

func (h *fakeHub) EmitToRoom(roomID, event string, payload any) {
	h.mu.Lock()
	targets := make([]*fakeConn, 0, len(h.members[roomID]))
	for c := range h.members[roomID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.Emit(event, payload)
	}
}

func (h *fakeHub) inRoom(roomID string, c *fakeConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.members[roomID][c]
}

type fakeConn struct {
	id        string
	hub       *fakeHub
	connected atomic.Bool

	mu     sync.Mutex
	events []emitted
}

func newFakeConn(hub *fakeHub, id string) *fakeConn {
	c := &fakeConn{id: id, hub: hub}
	c.connected.Store(true)
	return c
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Join(roomID string) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.hub.members[roomID] == nil {
		c.hub.members[roomID] = make(map[*fakeConn]bool)
	}
	c.hub.members[roomID][c] = true
}

func (c *fakeConn) Leave(roomID string) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	delete(c.hub.members[roomID], c)
}

func (c *fakeConn) Emit(event string, payload any) {
	if !c.Connected() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{event: event, payload: payload})
}

func (c *fakeConn) Connected() bool { return c.connected.Load() }

func (c *fakeConn) disconnect() { c.connected.Store(false) }

func (c *fakeConn) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(event string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].event == event {
			return c.events[i].payload, true
		}
	}
	return nil, false
}

// nth devolve o payload da n-ésima ocorrência (base zero) do evento.
func (c *fakeConn) nth(event string, n int) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.event != event {
			continue
		}
		if n == 0 {
			return e.payload
		}
		n--
	}
	return nil
}

func (c *fakeConn) lastState() (pong.State, bool) {
	p, ok := c.last("gameStateUpdate")
	if !ok {
		return pong.State{}, false
	}
	return p.(pong.State), true
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []events.MatchEvent
}

func (p *recordingPublisher) Publish(subject string, ev events.MatchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type fakeQueue struct {
	mu      sync.Mutex
	removed []string
}

func (q *fakeQueue) Remove(c Conn) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removed = append(q.removed, c.ID())
	return true
}

func fastConfig() Config {
	return Config{
		Countdown:    30 * time.Millisecond,
		TickInterval: 2 * time.Millisecond,
		Game:         pong.DefaultSettings(),
	}
}

const (
	waitFor = 2 * time.Second
	poll    = 2 * time.Millisecond
)

var testLog = logger.Component(logger.Discard(), "test")
