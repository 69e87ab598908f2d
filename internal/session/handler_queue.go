package session

import (
	"encoding/json"

	"pongmatch/internal/services/gameroom"
	"pongmatch/internal/session/message"
)

// handleJoinQueue coloca a conexão na fila, a menos que ela já esteja jogando.
func handleJoinQueue(h *GameHandler, conn gameroom.Conn, _ json.RawMessage) {
	if roomID, playing := h.rooms.RoomOf(conn.ID()); playing {
		h.log.WithField("conn_id", conn.ID()).WithField("room_id", roomID).Debug("joinQueue ignored while in a match")
		return
	}
	h.queue.Enqueue(conn)
}

func (h *GameHandler) registerQueueHandlers() {
	h.router[message.JoinQueue] = handleJoinQueue
}
