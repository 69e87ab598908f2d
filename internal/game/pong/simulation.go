package pong

import "pongmatch/internal/game/entity"

// Side identifica um lado da quadra. O jogador 1 fica na esquerda.
type Side int

const (
	NoSide Side = iota
	Left
	Right
)

// String devolve o nome usado no campo winner de gameEnded.
func (s Side) String() string {
	switch s {
	case Left:
		return "Left Player"
	case Right:
		return "Right Player"
	}
	return ""
}

// SideOf converte o número do jogador (1 ou 2) em lado da quadra.
func SideOf(playerNumber int) (Side, bool) {
	switch playerNumber {
	case 1:
		return Left, true
	case 2:
		return Right, true
	}
	return NoSide, false
}

// Simulation é o estado autoritativo de uma partida. Não é segura para uso
// concorrente: pertence a uma única goroutine de sala.
type Simulation struct {
	cfg    Settings
	left   entity.Player
	right  entity.Player
	ball   entity.Ball
	winner Side
}

func New(cfg Settings) *Simulation {
	return &Simulation{
		cfg:   cfg,
		left:  entity.NewPlayer(0, cfg.PaddleWidth, cfg.PaddleHeight, cfg.Height, cfg.PaddleSpeed),
		right: entity.NewPlayer(cfg.Width-cfg.PaddleWidth, cfg.PaddleWidth, cfg.PaddleHeight, cfg.Height, cfg.PaddleSpeed),
		ball: entity.Ball{
			X:      cfg.Width / 2,
			Y:      cfg.Height / 2,
			Radius: cfg.BallRadius,
			VX:     cfg.BallVelocityX,
			VY:     cfg.BallVelocityY,
			Speed:  cfg.BallSpeed,
		},
	}
}

// ApplyInput move a raquete do jogador 1 ou 2. Retorna false se o número for inválido
// ou a partida já tiver vencedor.
func (s *Simulation) ApplyInput(playerNumber int, dir entity.Direction) bool {
	if s.winner != NoSide {
		return false
	}
	switch side, _ := SideOf(playerNumber); side {
	case Left:
		s.left = s.left.Move(dir, s.cfg.Height)
	case Right:
		s.right = s.right.Move(dir, s.cfg.Height)
	default:
		return false
	}
	return true
}

// Step executa um tick. Retorna o vencedor quando a partida termina neste tick;
// nesse caso nada mais se move.
func (s *Simulation) Step() Side {
	if s.winner != NoSide {
		return s.winner
	}

	if scorer := s.scoringSide(); scorer != NoSide {
		if s.award(scorer) {
			return s.winner
		}
		s.ball = s.ball.ResetToCenter(s.cfg.Width, s.cfg.Height, s.cfg.BallSpeed)
	}

	s.ball = s.ball.Advance().BounceVertical(s.cfg.Height)

	paddle := s.right
	if s.ball.InLeftHalf(s.cfg.Width) {
		paddle = s.left
	}
	if s.ball.CollidesWith(paddle.Rect()) {
		s.ball = s.ball.Deflect(paddle, s.cfg.Width, s.cfg.SpeedIncrement)
	}
	return NoSide
}

// scoringSide olha só a borda da bola que passou a linha de fundo.
func (s *Simulation) scoringSide() Side {
	switch {
	case s.ball.X-s.ball.Radius < 0:
		return Right
	case s.ball.X+s.ball.Radius > s.cfg.Width:
		return Left
	}
	return NoSide
}

// award soma o ponto e retorna true se ele decidiu a partida.
func (s *Simulation) award(side Side) bool {
	p := &s.left
	if side == Right {
		p = &s.right
	}
	p.Score++
	if p.Score >= s.cfg.TargetScore {
		s.winner = side
		return true
	}
	return false
}

func (s *Simulation) Winner() Side { return s.winner }

// Scores devolve (esquerda, direita).
func (s *Simulation) Scores() (int, int) { return s.left.Score, s.right.Score }

func (s *Simulation) Settings() Settings { return s.cfg }

func (s *Simulation) State() State {
	return State{
		Player1: paddleState(s.left),
		Player2: paddleState(s.right),
		Ball:    BallState{X: s.ball.X, Y: s.ball.Y, R: s.ball.Radius},
	}
}

func paddleState(p entity.Player) PaddleState {
	return PaddleState{X: p.X, Y: p.Y, H: p.Height, Score: p.Score}
}
