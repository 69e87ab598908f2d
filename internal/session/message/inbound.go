package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingRoom = errors.New("missing roomId")

type MovePlayerPayload struct {
	RoomID    string `json:"roomId"`
	Player    int    `json:"player"`
	Direction string `json:"direction"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

func DecodeMovePlayer(raw json.RawMessage) (MovePlayerPayload, error) {
	var p MovePlayerPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", MovePlayer, err)
	}
	if p.RoomID == "" {
		return p, ErrMissingRoom
	}
	return p, nil
}

// DecodeRoomID aceita {"roomId": "..."} ou o id como string pura,
// que é o que o cliente web manda em pauseGame/resumeGame.
func DecodeRoomID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("decode room id: %w", err)
		}
		if id == "" {
			return "", ErrMissingRoom
		}
		return id, nil
	}

	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("decode room id: %w", err)
	}
	if p.RoomID == "" {
		return "", ErrMissingRoom
	}
	return p.RoomID, nil
}
