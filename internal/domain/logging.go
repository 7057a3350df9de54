package domain

import "fmt"

// Log categories written by the use cases.
const (
	LogTask     = "task"
	LogSubtask  = "subtask"
	LogCategory = "category"
	LogTimer    = "timer"
	LogState    = "state"
)

// SessionStartedMessage describes an opened time session for the task log.
func SessionStartedMessage(s *TimeSession) string {
	return fmt.Sprintf("session %s started at %s", ShortID(s.ID), s.StartTime.Format("15:04:05"))
}

// SessionStoppedMessage describes a closed time session and the task's new total.
func SessionStoppedMessage(s *TimeSession, totalMinutes int) string {
	minutes := 0
	if s.DurationMinutes != nil {
		minutes = *s.DurationMinutes
	}
	end := "?"
	if s.EndTime != nil {
		end = s.EndTime.Format("15:04:05")
	}
	return fmt.Sprintf("session %s stopped at %s after %d min (total %d min)",
		ShortID(s.ID), end, minutes, totalMinutes)
}
