package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pongmatch/internal/logger"
	"pongmatch/internal/services/events"
	"pongmatch/internal/services/gameroom"
	"pongmatch/internal/session/message"
)

type stubConn struct {
	id   string
	gone atomic.Bool

	mu     sync.Mutex
	events map[string][]any
}

func newStubConn(id string) *stubConn {
	return &stubConn{id: id, events: make(map[string][]any)}
}

func (c *stubConn) ID() string      { return c.id }
func (c *stubConn) Join(string)     {}
func (c *stubConn) Leave(string)    {}
func (c *stubConn) Connected() bool { return !c.gone.Load() }
func (c *stubConn) Emit(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[event] = append(c.events[event], payload)
}

func (c *stubConn) first(event string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events[event]) == 0 {
		return nil
	}
	return c.events[event][0]
}

type pairRecorder struct {
	mu    sync.Mutex
	pairs [][2]string
}

func (r *pairRecorder) CreateRoom(a, b gameroom.Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, [2]string{a.ID(), b.ID()})
	return fmt.Sprintf("room-%d", len(r.pairs))
}

func (r *pairRecorder) snapshot() [][2]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]string(nil), r.pairs...)
}

func startQueue(t *testing.T, m Matcher) *QueueMaster {
	t.Helper()
	qm := NewQueueMaster(m, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go qm.Run(ctx)
	return qm
}

func TestPairsInArrivalOrder(t *testing.T) {
	rec := &pairRecorder{}
	qm := startQueue(t, rec)

	conns := make([]*stubConn, 6)
	for i := range conns {
		conns[i] = newStubConn(fmt.Sprintf("c%d", i+1))
		assert.True(t, qm.Enqueue(conns[i]))
	}

	assert.Equal(t, [][2]string{{"c1", "c2"}, {"c3", "c4"}, {"c5", "c6"}}, rec.snapshot())
	assert.Zero(t, qm.Size())
}

func TestRemoveKeepsOrderOfOthers(t *testing.T) {
	rec := &pairRecorder{}
	qm := startQueue(t, rec)
	a, b, c := newStubConn("a"), newStubConn("b"), newStubConn("c")

	qm.Enqueue(a)
	assert.True(t, qm.Remove(a))
	assert.False(t, qm.Remove(a), "second remove is a no-op")

	qm.Enqueue(b)
	assert.Equal(t, 1, qm.Size())
	qm.Enqueue(c)

	assert.Equal(t, [][2]string{{"b", "c"}}, rec.snapshot())
}

func TestEnqueueIgnoresDuplicates(t *testing.T) {
	rec := &pairRecorder{}
	qm := startQueue(t, rec)
	a := newStubConn("a")

	assert.True(t, qm.Enqueue(a))
	assert.False(t, qm.Enqueue(a))
	assert.Equal(t, 1, qm.Size())
	assert.Empty(t, rec.snapshot())
}

func TestDisconnectedEntriesAreSkipped(t *testing.T) {
	rec := &pairRecorder{}
	qm := startQueue(t, rec)
	a, b, c := newStubConn("a"), newStubConn("b"), newStubConn("c")

	qm.Enqueue(a)
	a.gone.Store(true)
	qm.Enqueue(b)
	assert.Empty(t, rec.snapshot())
	qm.Enqueue(c)

	assert.Equal(t, [][2]string{{"b", "c"}}, rec.snapshot())
}

func TestStoppedQueueDoesNotBlock(t *testing.T) {
	qm := NewQueueMaster(&pairRecorder{}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		qm.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.False(t, qm.Enqueue(newStubConn("late")))
	assert.Zero(t, qm.Size())
}

func TestJoinQueueAssignsPlayerNumbers(t *testing.T) {
	cfg := gameroom.DefaultConfig()
	cfg.Countdown = time.Hour
	rm := gameroom.NewRoomManager(cfg, nopBroadcaster{}, events.Nop{}, logger.Discard())
	qm := NewQueueMaster(rm, logger.Discard())
	rm.AttachQueue(qm)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go rm.Run(ctx)
	go qm.Run(ctx)

	a, b := newStubConn("A"), newStubConn("B")
	qm.Enqueue(a)
	qm.Enqueue(b)

	fa, ok := a.first(message.MatchFound).(message.MatchFoundPayload)
	require.True(t, ok)
	fb, ok := b.first(message.MatchFound).(message.MatchFoundPayload)
	require.True(t, ok)

	assert.Equal(t, 1, fa.PlayerNumber)
	assert.Equal(t, 2, fb.PlayerNumber)
	assert.Equal(t, fa.RoomID, fb.RoomID)

	// quem desconecta esperando sai da fila pelo RoomManager
	c := newStubConn("C")
	qm.Enqueue(c)
	rm.HandleDisconnect(c)
	assert.Zero(t, qm.Size())
}

func TestStatusEndpoint(t *testing.T) {
	qm := startQueue(t, &pairRecorder{})
	qm.Enqueue(newStubConn("a"))

	mux := http.NewServeMux()
	RegisterQueueHandlers(mux, qm)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/queue", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Waiting)
}

type nopBroadcaster struct{}

func (nopBroadcaster) EmitToRoom(string, string, any) {}
