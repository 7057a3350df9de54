package view

import (
	"fmt"
	"time"

	"github.com/runoshun/tempo/internal/domain"
)

// CountViews returns the number of tasks each view would show.
func CountViews(tasks []*domain.Task, today domain.Date) map[domain.View]int {
	counts := make(map[domain.View]int, len(domain.AllViews()))
	for _, v := range domain.AllViews() {
		counts[v] = len(Narrow(tasks, ByView(v, today)))
	}
	return counts
}

// CountByCategory returns the number of open tasks per category id.
// Uncategorized tasks are counted under "".
func CountByCategory(tasks []*domain.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		if !t.Completed {
			counts[t.CategoryID]++
		}
	}
	return counts
}

// CountByPriority returns the number of open tasks per priority.
func CountByPriority(tasks []*domain.Task) map[domain.Priority]int {
	counts := make(map[domain.Priority]int, len(domain.AllPriorities()))
	for _, t := range tasks {
		if !t.Completed {
			counts[t.Priority]++
		}
	}
	return counts
}

// Summary aggregates the continuous partition.
type Summary struct {
	Active       int
	Paused       int
	Completed    int
	Total        int
	TotalMinutes int // Accumulated minutes of closed sessions
}

// Summarize counts continuous tasks by timer state and sums tracked time.
func Summarize(tasks []*domain.Task) Summary {
	var s Summary
	for _, t := range tasks {
		if !t.IsContinuous() {
			continue
		}
		s.Total++
		s.TotalMinutes += t.TotalTimeSpentMinutes
		switch {
		case t.Completed:
			s.Completed++
		case t.IsActive:
			s.Active++
		default:
			s.Paused++
		}
	}
	return s
}

// DueStatus classifies a due date relative to today.
type DueStatus string

const (
	DueNone     DueStatus = ""
	DueOverdue  DueStatus = "overdue"
	DueToday    DueStatus = "today"
	DueTomorrow DueStatus = "tomorrow"
	DueUpcoming DueStatus = "upcoming"
)

// DueStatusOf classifies a task's due date.
func DueStatusOf(t *domain.Task, today domain.Date) DueStatus {
	if t.DueDate == nil {
		return DueNone
	}
	due := *t.DueDate
	switch {
	case due.Before(today):
		return DueOverdue
	case due.Compare(today) == 0:
		return DueToday
	case due.Compare(today.AddDays(1)) == 0:
		return DueTomorrow
	default:
		return DueUpcoming
	}
}

// FormatMinutes renders a minute count as "1h 05m" or "42m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes >= 60 {
		return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatDuration renders a running timer as "1:02:03" or "02:03".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
