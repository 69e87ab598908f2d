package entity

import "math"

// maxBounceAngle é o maior ângulo de saída após uma rebatida (45 graus).
const maxBounceAngle = math.Pi / 4

// Ball guarda posição, velocidade e a magnitude escalar Speed.
// Speed e (VX, VY) valem ao mesmo tempo: uma rebatida recalcula VX e VY a partir
// de Speed e só então incrementa Speed.
type Ball struct {
	X, Y   float64
	Radius float64
	VX, VY float64
	Speed  float64
}

// Advance move a bola um tick. Não verifica limites.
func (b Ball) Advance() Ball {
	b.X += b.VX
	b.Y += b.VY
	return b
}

// BounceVertical inverte VY quando a bola toca o teto ou o chão.
func (b Ball) BounceVertical(courtHeight float64) Ball {
	if b.Y-b.Radius < 0 || b.Y+b.Radius > courtHeight {
		b.VY = -b.VY
	}
	return b
}

// ResetToCenter recoloca a bola no centro, inverte VX e restaura Speed.
// VY é mantido de propósito.
func (b Ball) ResetToCenter(width, height, initialSpeed float64) Ball {
	b.X = width / 2
	b.Y = height / 2
	b.VX = -b.VX
	b.Speed = initialSpeed
	return b
}

// Bounds é o quadrado que envolve a bola.
func (b Ball) Bounds() Rect {
	return Rect{X: b.X - b.Radius, Y: b.Y - b.Radius, Width: 2 * b.Radius, Height: 2 * b.Radius}
}

func (b Ball) CollidesWith(paddle Rect) bool {
	return b.Bounds().Overlaps(paddle)
}

// InLeftHalf diz se a borda direita da bola ainda está na metade esquerda da quadra.
func (b Ball) InLeftHalf(courtWidth float64) bool {
	return b.X+b.Radius < courtWidth/2
}

// Deflect rebate a bola na raquete p. O ângulo depende de quão longe do centro
// da raquete ela bateu; a direção horizontal sai da metade em que a bola está.
func (b Ball) Deflect(p Player, courtWidth, speedIncrement float64) Ball {
	half := p.Height / 2
	offset := b.Y - p.Center()
	if offset > half {
		offset = half
	} else if offset < -half {
		offset = -half
	}
	angle := maxBounceAngle * (offset / half)

	dir := -1.0
	if b.InLeftHalf(courtWidth) {
		dir = 1.0
	}
	b.VX = dir * b.Speed * math.Cos(angle)
	b.VY = b.Speed * math.Sin(angle)
	b.Speed += speedIncrement
	return b
}
