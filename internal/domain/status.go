package domain

// ContinuousStatus represents the state of a continuous task.
type ContinuousStatus string

const (
	StatusPending   ContinuousStatus = "pending"   // Timer stopped, not completed
	StatusActive    ContinuousStatus = "active"    // Timer running
	StatusCompleted ContinuousStatus = "completed" // Marked complete (timer may still run)
)

// AllStatuses returns all valid status values.
func AllStatuses() []ContinuousStatus {
	return []ContinuousStatus{StatusPending, StatusActive, StatusCompleted}
}

// transitions defines the allowed status transitions.
// Flow: pending ⇄ active, either → completed, completed → back to
// pending or active depending on the timer.
var transitions = map[ContinuousStatus][]ContinuousStatus{
	StatusPending:   {StatusActive, StatusCompleted},
	StatusActive:    {StatusPending, StatusCompleted},
	StatusCompleted: {StatusPending, StatusActive},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s ContinuousStatus) CanTransitionTo(target ContinuousStatus) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns false for every status; completion can be toggled back.
func (s ContinuousStatus) IsTerminal() bool {
	return false
}

// Display returns a human-readable representation of the status.
func (s ContinuousStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// IsValid returns true if the status is a known valid value.
func (s ContinuousStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

// ContinuousStatus derives the state of the task. Completion wins over the timer.
func (t *Task) ContinuousStatus() ContinuousStatus {
	switch {
	case t.Completed:
		return StatusCompleted
	case t.IsActive:
		return StatusActive
	default:
		return StatusPending
	}
}
