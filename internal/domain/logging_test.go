package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionMessages(t *testing.T) {
	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s := &TimeSession{ID: "0193a1b2-0000-7000-8000-0000000000aa", StartTime: start}

	assert.Equal(t, "session 000000aa started at 09:00:00", SessionStartedMessage(s))
	assert.Equal(t, "session 000000aa stopped at ? after 0 min (total 15 min)", SessionStoppedMessage(s, 15))

	s.Close(start.Add(90*time.Minute + 30*time.Second))
	assert.Equal(t, "session 000000aa stopped at 10:30:30 after 91 min (total 106 min)", SessionStoppedMessage(s, 106))
}
