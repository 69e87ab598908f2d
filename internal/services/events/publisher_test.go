package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualify(t *testing.T) {
	assert.Equal(t, "pong.match.ended", qualify("pong", SubjectMatchEnded))
	assert.Equal(t, "match.found", qualify("", SubjectMatchFound))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NotPanics(t, func() {
		p.Publish(SubjectMatchStarted, MatchEvent{RoomID: "r1"})
	})
}
