package gameroom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pongmatch/internal/logger"
	"pongmatch/internal/services/events"
	"pongmatch/internal/session/message"
)

type managerFixture struct {
	rm    *RoomManager
	hub   *fakeHub
	pub   *recordingPublisher
	queue *fakeQueue
}

func startManager(t *testing.T, cfg Config) *managerFixture {
	t.Helper()
	hub := newFakeHub()
	pub := &recordingPublisher{}
	q := &fakeQueue{}

	rm := NewRoomManager(cfg, hub, pub, logger.Discard())
	rm.AttachQueue(q)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go rm.Run(ctx)

	return &managerFixture{rm: rm, hub: hub, pub: pub, queue: q}
}

func matchFound(t *testing.T, c *fakeConn) message.MatchFoundPayload {
	t.Helper()
	p, ok := c.last(message.MatchFound)
	require.True(t, ok, "no matchFound for %s", c.ID())
	return p.(message.MatchFoundPayload)
}

func TestCreateRoomAssignsPlayerNumbers(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")

	roomID := f.rm.CreateRoom(a, b)
	require.NotEmpty(t, roomID)

	assert.Equal(t, message.MatchFoundPayload{RoomID: roomID, PlayerNumber: 1}, matchFound(t, a))
	assert.Equal(t, message.MatchFoundPayload{RoomID: roomID, PlayerNumber: 2}, matchFound(t, b))
	assert.True(t, f.hub.inRoom(roomID, a))
	assert.True(t, f.hub.inRoom(roomID, b))

	got, ok := f.rm.RoomOf("b")
	assert.True(t, ok)
	assert.Equal(t, roomID, got)

	info, ok := f.rm.Room(roomID)
	require.True(t, ok)
	assert.Equal(t, [2]string{"a", "b"}, info.Players)
	assert.Contains(t, []Phase{PhaseCountingDown, PhaseRunning}, info.Phase)
}

func TestRoomsAreIndependent(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	c, d := newFakeConn(f.hub, "c"), newFakeConn(f.hub, "d")

	first := f.rm.CreateRoom(a, b)
	second := f.rm.CreateRoom(c, d)
	require.NotEqual(t, first, second)

	require.Eventually(t, func() bool {
		return a.count(message.GameStateUpdate) > 0 && c.count(message.GameStateUpdate) > 0
	}, waitFor, poll)

	f.rm.RouteInput(first, 1, "up")
	require.Eventually(t, func() bool {
		s, ok := a.lastState()
		return ok && s.Player1.Y == 180
	}, waitFor, poll)

	s, _ := c.lastState()
	assert.Equal(t, 200.0, s.Player1.Y, "input must not leak into another room")
}

func TestRouteInputIgnoresMalformedInput(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)

	require.Eventually(t, func() bool { return a.count(message.GameStateUpdate) > 0 }, waitFor, poll)

	f.rm.RouteInput(roomID, 2, "sideways")
	f.rm.RouteInput(roomID, 3, "up")
	f.rm.RouteInput(roomID, 0, "down")
	_, _ = f.rm.Room(roomID)

	before := a.count(message.GameStateUpdate)
	require.Eventually(t, func() bool { return a.count(message.GameStateUpdate) > before+2 }, waitFor, poll)
	s, _ := a.lastState()
	assert.Equal(t, 200.0, s.Player1.Y)
	assert.Equal(t, 200.0, s.Player2.Y)
}

func TestHandleDisconnectEndsRunningMatch(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)
	require.Eventually(t, func() bool { return b.count(message.GameStateUpdate) > 0 }, waitFor, poll)

	a.disconnect()
	f.rm.HandleDisconnect(a)

	_, ok := f.rm.Room(roomID)
	assert.False(t, ok, "room must leave the registry")
	_, ok = f.rm.RoomOf("b")
	assert.False(t, ok)
	assert.False(t, f.hub.inRoom(roomID, b))

	require.Eventually(t, func() bool { return b.count(message.GameEnded) == 1 }, waitFor, poll)
	p, _ := b.last(message.GameEnded)
	ended := p.(message.GameEndedPayload)
	assert.Nil(t, ended.Winner)
	assert.Equal(t, "Opponent disconnected", ended.Reason)

	// sala já removida: nada acontece
	f.rm.RouteInput(roomID, 2, "up")
	f.rm.Pause(roomID)
	assert.Zero(t, b.count(message.GamePaused))
	assert.Empty(t, f.queue.removed)

	assert.Eventually(t, func() bool {
		subjects := f.pub.published()
		return len(subjects) > 0 && subjects[len(subjects)-1] == events.SubjectMatchEnded
	}, waitFor, poll)
}

func TestHandleDisconnectWhileWaitingUsesQueue(t *testing.T) {
	f := startManager(t, fastConfig())
	lonely := newFakeConn(f.hub, "lonely")

	f.rm.HandleDisconnect(lonely)

	assert.Equal(t, []string{"lonely"}, f.queue.removed)
}

func TestUnknownRoomIsNoop(t *testing.T) {
	f := startManager(t, fastConfig())

	assert.NotPanics(t, func() {
		f.rm.RouteInput("nope", 1, "up")
		f.rm.Pause("nope")
		f.rm.Resume("nope")
		f.rm.Teardown("nope")
	})
	_, ok := f.rm.Room("nope")
	assert.False(t, ok)
	assert.Empty(t, f.rm.Rooms())
}

func TestPauseResumeThroughManager(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)

	// durante a contagem não há o que pausar
	f.rm.Pause(roomID)
	require.Eventually(t, func() bool { return a.count(message.GameStateUpdate) > 0 }, waitFor, poll)
	assert.Zero(t, a.count(message.GamePaused))

	f.rm.Pause(roomID)
	require.Eventually(t, func() bool { return b.count(message.GamePaused) == 1 }, waitFor, poll)
	info, ok := f.rm.Room(roomID)
	require.True(t, ok)
	assert.Equal(t, PhasePaused, info.Phase)

	f.rm.Resume(roomID)
	require.Eventually(t, func() bool { return a.count(message.GameResumed) == 1 }, waitFor, poll)
}

func TestTeardownIsIdempotent(t *testing.T) {
	f := startManager(t, fastConfig())
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)

	f.rm.Teardown(roomID)
	f.rm.Teardown(roomID)

	require.Eventually(t, func() bool { return a.count(message.GameEnded) == 1 }, waitFor, poll)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, a.count(message.GameEnded))
	assert.Equal(t, 1, b.count(message.GameEnded))
	assert.False(t, f.hub.inRoom(roomID, a))
}

func TestFinishedRoomLeavesRegistry(t *testing.T) {
	cfg := fastConfig()
	cfg.Game.TargetScore = 1
	f := startManager(t, cfg)
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)

	require.Eventually(t, func() bool {
		_, ok := f.rm.Room(roomID)
		return !ok && a.count(message.GameEnded) == 1
	}, waitFor, poll)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{
			events.SubjectMatchFound,
			events.SubjectMatchStarted,
			events.SubjectMatchEnded,
		}, f.pub.published())
	}, waitFor, poll)

	f.pub.mu.Lock()
	last := f.pub.events[len(f.pub.events)-1]
	f.pub.mu.Unlock()
	assert.Equal(t, "Left Player", last.Winner)
	assert.Equal(t, [2]int{1, 0}, last.Score)
}

func TestStatusAPI(t *testing.T) {
	cfg := fastConfig()
	cfg.Countdown = time.Hour
	f := startManager(t, cfg)
	a, b := newFakeConn(f.hub, "a"), newFakeConn(f.hub, "b")
	roomID := f.rm.CreateRoom(a, b)

	mux := http.NewServeMux()
	RegisterHandlers(mux, f.rm)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, roomID, list[0].RoomID)
	assert.Equal(t, PhaseCountingDown, list[0].Phase)

	resp2, err := http.Get(srv.URL + "/rooms/" + roomID)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/rooms/missing")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestShutdownEndsEveryRoom(t *testing.T) {
	hub := newFakeHub()
	rm := NewRoomManager(fastConfig(), hub, nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go rm.Run(ctx)

	a, b := newFakeConn(hub, "a"), newFakeConn(hub, "b")
	c, d := newFakeConn(hub, "c"), newFakeConn(hub, "d")
	require.NotEmpty(t, rm.CreateRoom(a, b))
	require.NotEmpty(t, rm.CreateRoom(c, d))

	cancel()
	done := make(chan struct{})
	go func() {
		rm.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Wait did not return after shutdown")
	}

	for _, conn := range []*fakeConn{a, b, c, d} {
		p, ok := conn.last(message.GameEnded)
		require.True(t, ok, "no gameEnded for %s", conn.ID())
		ended := p.(message.GameEndedPayload)
		assert.Nil(t, ended.Winner)
		assert.Equal(t, message.ReasonServerShutdown, ended.Reason)
	}
	assert.Equal(t, "", rm.CreateRoom(a, b))
}

// requeueConn pergunta ao manager pela sala no momento em que recebe gameEnded,
// como faz um cliente que volta pra fila logo em seguida.
type requeueConn struct {
	*fakeConn
	rm      *RoomManager
	checked chan bool
}

func (c *requeueConn) Emit(event string, payload any) {
	c.fakeConn.Emit(event, payload)
	if event == message.GameEnded {
		_, playing := c.rm.RoomOf(c.ID())
		c.checked <- playing
	}
}

func TestRoomOfIsClearWhenGameEndedArrives(t *testing.T) {
	cfg := fastConfig()
	cfg.Game.TargetScore = 1
	f := startManager(t, cfg)
	a := &requeueConn{fakeConn: newFakeConn(f.hub, "a"), rm: f.rm, checked: make(chan bool, 1)}
	b := newFakeConn(f.hub, "b")
	require.NotEmpty(t, f.rm.CreateRoom(a, b))

	select {
	case playing := <-a.checked:
		assert.False(t, playing, "a finished match must not block joinQueue")
	case <-time.After(waitFor):
		t.Fatal("gameEnded never delivered")
	}
}
