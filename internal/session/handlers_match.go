package session

import (
	"encoding/json"

	"pongmatch/internal/services/gameroom"
	"pongmatch/internal/session/message"
)

func handleMovePlayer(h *GameHandler, conn gameroom.Conn, payload json.RawMessage) {
	req, err := message.DecodeMovePlayer(payload)
	if err != nil {
		h.log.WithError(err).WithField("conn_id", conn.ID()).Debug("malformed movePlayer ignored")
		return
	}
	h.rooms.RouteInput(req.RoomID, req.Player, req.Direction)
}

func handlePauseGame(h *GameHandler, conn gameroom.Conn, payload json.RawMessage) {
	roomID, err := message.DecodeRoomID(payload)
	if err != nil {
		h.log.WithError(err).WithField("conn_id", conn.ID()).Debug("malformed pauseGame ignored")
		return
	}
	h.rooms.Pause(roomID)
}

func handleResumeGame(h *GameHandler, conn gameroom.Conn, payload json.RawMessage) {
	roomID, err := message.DecodeRoomID(payload)
	if err != nil {
		h.log.WithError(err).WithField("conn_id", conn.ID()).Debug("malformed resumeGame ignored")
		return
	}
	h.rooms.Resume(roomID)
}

// registerMatchHandlers popula o roteador com os comandos disponíveis durante uma partida.
func (h *GameHandler) registerMatchHandlers() {
	h.router[message.MovePlayer] = handleMovePlayer
	h.router[message.PauseGame] = handlePauseGame
	h.router[message.ResumeGame] = handleResumeGame
}
