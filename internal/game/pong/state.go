package pong

// PaddleState é a raquete como o cliente a desenha.
type PaddleState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	H     float64 `json:"h"`
	Score int     `json:"score"`
}

type BallState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// State é o payload de startingGame e gameStateUpdate.
type State struct {
	Player1 PaddleState `json:"player1"`
	Player2 PaddleState `json:"player2"`
	Ball    BallState   `json:"ball"`
}
