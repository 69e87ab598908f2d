package gameroom

// Conn é o que a sala precisa de uma conexão de jogador.
// network.Client implementa esta interface.
type Conn interface {
	ID() string
	Join(roomID string)
	Leave(roomID string)
	// Emit nunca bloqueia; se o cliente estiver lento a mensagem é descartada.
	Emit(event string, payload any)
	Connected() bool
}

// Broadcaster envia um evento para todas as conexões que entraram na sala.
type Broadcaster interface {
	EmitToRoom(roomID, event string, payload any)
}
