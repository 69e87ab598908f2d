// Package message define os eventos trocados com o cliente e seus payloads.
package message

// Eventos cliente -> servidor.
const (
	JoinQueue  = "joinQueue"
	MovePlayer = "movePlayer"
	PauseGame  = "pauseGame"
	ResumeGame = "resumeGame"
)

// Eventos servidor -> cliente.
const (
	MatchFound      = "matchFound"
	StartingGame    = "startingGame"
	GameStateUpdate = "gameStateUpdate"
	GamePaused      = "gamePaused"
	GameResumed     = "gameResumed"
	GameEnded       = "gameEnded"
	MatchCancelled  = "matchCancelled"
)

const (
	ReasonOpponentDisconnected = "Opponent disconnected"
	ReasonNotEnoughPlayers     = "Not enough players"
	ReasonServerShutdown       = "Server shutting down"
	ReasonRoomClosed           = "Room closed"
)

type MatchFoundPayload struct {
	RoomID       string `json:"roomId"`
	PlayerNumber int    `json:"playerNumber"`
}

// GameEndedPayload serializa Winner nil como null.
type GameEndedPayload struct {
	Winner *string `json:"winner"`
	Reason string  `json:"reason,omitempty"`
}

type MatchCancelledPayload struct {
	Reason string `json:"reason"`
}

// Ended monta o payload de gameEnded. winner vazio vira null.
func Ended(winner, reason string) GameEndedPayload {
	p := GameEndedPayload{Reason: reason}
	if winner != "" {
		p.Winner = &winner
	}
	return p
}
