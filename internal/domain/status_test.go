package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinuousStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from ContinuousStatus
		to   ContinuousStatus
		want bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusCompleted, true},
		{StatusActive, StatusPending, true},
		{StatusActive, StatusCompleted, true},
		{StatusCompleted, StatusPending, true},
		{StatusCompleted, StatusActive, true},
		{StatusPending, StatusPending, false},
		{ContinuousStatus("unknown"), StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestContinuousStatus_NotTerminal(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.False(t, s.IsTerminal(), s)
		assert.True(t, s.IsValid(), s)
	}
}

func TestTask_ContinuousStatus(t *testing.T) {
	assert.Equal(t, StatusPending, (&Task{}).ContinuousStatus())
	assert.Equal(t, StatusActive, (&Task{IsActive: true}).ContinuousStatus())
	assert.Equal(t, StatusCompleted, (&Task{Completed: true}).ContinuousStatus())
	// A completed task with a running timer still reports completed
	assert.Equal(t, StatusCompleted, (&Task{Completed: true, IsActive: true}).ContinuousStatus())
}

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("urgent").IsValid())

	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
