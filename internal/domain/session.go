package domain

import (
	"math"
	"time"
)

// TimeSession is one contiguous interval of work on a continuous task.
// A session is open while EndTime is nil. Closed sessions are never mutated.
// Fields are ordered to minimize memory padding.
type TimeSession struct {
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	ID              string     `json:"id"`
	TaskID          string     `json:"taskID"`
}

// IsOpen returns true if the session has not been closed.
func (s *TimeSession) IsOpen() bool {
	return s.EndTime == nil
}

// Close ends the session at end and records its duration in whole minutes.
// A negative interval (clock skew) is clamped to zero and reported by
// returning clamped = true.
func (s *TimeSession) Close(end time.Time) (minutes int, clamped bool) {
	minutes, clamped = SessionMinutes(s.StartTime, end)
	at := end
	s.EndTime = &at
	s.DurationMinutes = &minutes
	return minutes, clamped
}

// Clone returns a copy of the session.
func (s *TimeSession) Clone() *TimeSession {
	if s == nil {
		return nil
	}
	c := *s
	c.EndTime = clonePtr(s.EndTime)
	c.DurationMinutes = clonePtr(s.DurationMinutes)
	return &c
}

// SessionMinutes returns round((end-start)/1m), clamped at zero.
func SessionMinutes(start, end time.Time) (minutes int, clamped bool) {
	if end.Before(start) {
		return 0, true
	}
	return int(math.Round(end.Sub(start).Minutes())), false
}
