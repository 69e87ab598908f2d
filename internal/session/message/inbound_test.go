package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoomID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"object", `{"roomId":"abc"}`, "abc", false},
		{"bare string", `"abc"`, "abc", false},
		{"padded bare string", ` "abc" `, "abc", false},
		{"empty object", `{}`, "", true},
		{"empty string", `""`, "", true},
		{"null", `null`, "", true},
		{"number", `42`, "", true},
		{"no payload", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRoomID(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMovePlayer(t *testing.T) {
	p, err := DecodeMovePlayer(json.RawMessage(`{"roomId":"r1","player":2,"direction":"down"}`))
	require.NoError(t, err)
	assert.Equal(t, MovePlayerPayload{RoomID: "r1", Player: 2, Direction: "down"}, p)

	_, err = DecodeMovePlayer(json.RawMessage(`{"player":1,"direction":"up"}`))
	assert.ErrorIs(t, err, ErrMissingRoom)

	_, err = DecodeMovePlayer(json.RawMessage(`{"roomId":"r1","player":"one"}`))
	assert.Error(t, err)
}

func TestEndedPayloadEncodesNullWinner(t *testing.T) {
	b, err := json.Marshal(Ended("", ReasonOpponentDisconnected))
	require.NoError(t, err)
	assert.JSONEq(t, `{"winner":null,"reason":"Opponent disconnected"}`, string(b))

	b, err = json.Marshal(Ended("Left Player", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"winner":"Left Player"}`, string(b))
}
