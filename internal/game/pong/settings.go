package pong

import (
	"errors"
	"fmt"
)

// Settings são as constantes numéricas de uma partida. Ficam fixas durante toda a partida.
type Settings struct {
	Width       float64
	Height      float64
	TargetScore int

	BallRadius     float64
	BallVelocityX  float64
	BallVelocityY  float64
	BallSpeed      float64
	SpeedIncrement float64

	PaddleWidth  float64
	PaddleHeight float64
	PaddleSpeed  float64
}

// DefaultSettings reproduz a quadra clássica 800x500 com partidas até 10 pontos.
func DefaultSettings() Settings {
	return Settings{
		Width:          800,
		Height:         500,
		TargetScore:    10,
		BallRadius:     10,
		BallVelocityX:  5,
		BallVelocityY:  5,
		BallSpeed:      7,
		SpeedIncrement: 0.1,
		PaddleWidth:    10,
		PaddleHeight:   100,
		PaddleSpeed:    20,
	}
}

var errBadSettings = errors.New("invalid game settings")

// Validate rejeita quadras onde a física não faz sentido.
func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: court %vx%v", errBadSettings, s.Width, s.Height)
	case s.TargetScore < 1:
		return fmt.Errorf("%w: target score %d", errBadSettings, s.TargetScore)
	case s.BallRadius <= 0 || 2*s.BallRadius >= s.Height:
		return fmt.Errorf("%w: ball radius %v", errBadSettings, s.BallRadius)
	case s.PaddleWidth <= 0 || s.PaddleHeight <= 0 || s.PaddleHeight >= s.Height:
		return fmt.Errorf("%w: paddle %vx%v", errBadSettings, s.PaddleWidth, s.PaddleHeight)
	case 2*s.PaddleWidth >= s.Width:
		return fmt.Errorf("%w: paddle width %v", errBadSettings, s.PaddleWidth)
	case s.PaddleSpeed <= 0 || s.BallSpeed <= 0 || s.SpeedIncrement < 0:
		return fmt.Errorf("%w: speeds", errBadSettings)
	}
	return nil
}
