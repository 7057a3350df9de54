// Package view derives displayed task lists from the entity store.
//
// Every step is a pure predicate over a task. Derive composes them by
// sequential narrowing and then sorts with a total order, so the same input
// always yields the same output.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
)

// Predicate reports whether a task stays in the list.
type Predicate func(*domain.Task) bool

// Narrow keeps the tasks accepted by every predicate, applied in order.
// Nil predicates are skipped. The input slice is not modified.
func Narrow(tasks []*domain.Task, preds ...Predicate) []*domain.Task {
	out := slices.Clone(tasks)
	for _, p := range preds {
		if p == nil {
			continue
		}
		out = slices.DeleteFunc(out, func(t *domain.Task) bool { return !p(t) })
	}
	return out
}

// ByView selects tasks for a named view relative to today.
// Tasks without a due date only appear in the all and completed views.
func ByView(v domain.View, today domain.Date) Predicate {
	switch v {
	case domain.ViewToday:
		return func(t *domain.Task) bool {
			return !t.Completed && t.DueDate != nil && t.DueDate.Compare(today) == 0
		}
	case domain.ViewUpcoming:
		return func(t *domain.Task) bool {
			return !t.Completed && t.DueDate != nil && t.DueDate.After(today)
		}
	case domain.ViewCompleted:
		return func(t *domain.Task) bool { return t.Completed }
	default:
		return func(t *domain.Task) bool { return !t.Completed }
	}
}

// ByCategory selects tasks of one category. An empty id selects everything.
func ByCategory(categoryID string) Predicate {
	if categoryID == "" {
		return nil
	}
	return func(t *domain.Task) bool { return t.CategoryID == categoryID }
}

// ByPriority selects tasks of one priority. Nil selects everything.
func ByPriority(p *domain.Priority) Predicate {
	if p == nil {
		return nil
	}
	want := *p
	return func(t *domain.Task) bool { return t.Priority == want }
}

// BySearch selects tasks whose title contains s, ignoring case.
// An empty search selects everything.
func BySearch(s string) Predicate {
	if s == "" {
		return nil
	}
	needle := strings.ToLower(s)
	return func(t *domain.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), needle)
	}
}

// ByStatus selects continuous tasks by timer state.
// Active and paused tasks are never completed.
func ByStatus(f domain.TimerFilter) Predicate {
	switch f {
	case domain.TimerActive:
		return func(t *domain.Task) bool { return t.IsActive && !t.Completed }
	case domain.TimerPaused:
		return func(t *domain.Task) bool { return !t.IsActive && !t.Completed }
	case domain.TimerCompleted:
		return func(t *domain.Task) bool { return t.Completed }
	default:
		return nil
	}
}

// Derive filters and sorts one partition of tasks.
// Partitioning by task type is left to the caller (see Partition).
func Derive(tasks []*domain.Task, f domain.Filters, sortBy domain.SortBy, today domain.Date) []*domain.Task {
	out := Narrow(tasks,
		ByView(f.View, today),
		ByCategory(f.CategoryID),
		ByPriority(f.Priority),
		BySearch(f.Search),
	)
	Sort(out, sortBy)
	return out
}

// Sort orders tasks in place by the given key.
// Ties fall back to order index, then id.
func Sort(tasks []*domain.Task, sortBy domain.SortBy) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := compareBy(a, b, sortBy); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareBy(a, b *domain.Task, sortBy domain.SortBy) int {
	switch sortBy {
	case domain.SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			return a.DueDate.Compare(*b.DueDate)
		}
	case domain.SortByPriority:
		// Most urgent first
		return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
	case domain.SortByCreatedAt:
		return a.Created.Compare(b.Created)
	default:
		return 0
	}
}

// Partition returns the tasks of one type, keeping their order.
func Partition(tasks []*domain.Task, typ domain.TaskType) []*domain.Task {
	return Narrow(tasks, func(t *domain.Task) bool { return t.Type == typ })
}
