package entity

// Player é a raquete de um participante. É um valor: Move devolve uma cópia
// atualizada e quem chama decide onde guardá-la.
type Player struct {
	X, Y      float64
	Width     float64
	Height    float64
	Score     int
	MoveSpeed float64
}

// NewPlayer cria uma raquete centralizada verticalmente na coluna x.
func NewPlayer(x, width, height, courtHeight, moveSpeed float64) Player {
	return Player{
		X:         x,
		Y:         (courtHeight - height) / 2,
		Width:     width,
		Height:    height,
		MoveSpeed: moveSpeed,
	}
}

// Move dá um passo na direção pedida, mantendo 0 <= Y <= courtHeight-Height.
func (p Player) Move(dir Direction, courtHeight float64) Player {
	switch dir {
	case Up:
		if p.Y-p.MoveSpeed < 0 {
			p.Y = 0
		} else {
			p.Y -= p.MoveSpeed
		}
	case Down:
		if p.Y+p.Height+p.MoveSpeed > courtHeight {
			p.Y = courtHeight - p.Height
		} else {
			p.Y += p.MoveSpeed
		}
	}
	return p
}

// Center é a coordenada y do meio da raquete.
func (p Player) Center() float64 {
	return p.Y + p.Height/2
}

func (p Player) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}
