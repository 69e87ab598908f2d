package network

import (
	"encoding/json"
	"fmt"
)

// Message é o envelope padrão para toda a comunicação.
// Type é o nome do evento (joinQueue, gameStateUpdate...) e Payload fica
// em JSON bruto para ser decodificado por quem trata o evento.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MaxMessageSize limita o que um cliente pode mandar num único frame.
const MaxMessageSize = 64 * 1024

// NewMessage serializa payload dentro do envelope. payload nil vira null.
func NewMessage(event string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: event}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Message{Type: event, Payload: raw}, nil
}
