package entity

// Direction é o sentido de um passo discreto da raquete.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection aceita apenas "up" e "down". Qualquer outro valor retorna false
// e deve ser ignorado pelo chamador.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Up:
		return Up, true
	case Down:
		return Down, true
	}
	return "", false
}
