package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMinutes(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		end         time.Time
		wantMinutes int
		wantClamped bool
	}{
		{"exact ten minutes", start.Add(10 * time.Minute), 10, false},
		{"rounds down", start.Add(10*time.Minute + 29*time.Second), 10, false},
		{"rounds half up", start.Add(10*time.Minute + 30*time.Second), 11, false},
		{"rounds half up past the hour", start.Add(90*time.Minute + 30*time.Second), 91, false},
		{"just under half past the hour", start.Add(90*time.Minute + 29*time.Second), 90, false},
		{"zero", start, 0, false},
		{"under half a minute", start.Add(20 * time.Second), 0, false},
		{"clock skew", start.Add(-5 * time.Minute), 0, true},
		{"slight clock skew", start.Add(-10 * time.Second), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, clamped := SessionMinutes(start, tt.end)
			assert.Equal(t, tt.wantMinutes, minutes)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestTimeSession_Close(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := &TimeSession{ID: "s1", TaskID: "t1", StartTime: start}
	require.True(t, s.IsOpen())

	minutes, clamped := s.Close(start.Add(25 * time.Minute))

	assert.Equal(t, 25, minutes)
	assert.False(t, clamped)
	assert.False(t, s.IsOpen())
	require.NotNil(t, s.DurationMinutes)
	assert.Equal(t, 25, *s.DurationMinutes)
	assert.Equal(t, start.Add(25*time.Minute), *s.EndTime)
}

func TestTimeSession_Clone(t *testing.T) {
	end := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	minutes := 5
	s := &TimeSession{ID: "s1", EndTime: &end, DurationMinutes: &minutes}

	c := s.Clone()
	*c.DurationMinutes = 7

	assert.Equal(t, 5, *s.DurationMinutes)
}
