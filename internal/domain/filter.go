package domain

// View names a predicate selecting which tasks are eligible for display.
type View string

const (
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewAll       View = "all"
	ViewCompleted View = "completed"
)

// AllViews returns all views in display order.
func AllViews() []View {
	return []View{ViewToday, ViewUpcoming, ViewAll, ViewCompleted}
}

// IsValid returns true if the view is a known value.
func (v View) IsValid() bool {
	switch v {
	case ViewToday, ViewUpcoming, ViewAll, ViewCompleted:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the view.
func (v View) Display() string {
	switch v {
	case ViewToday:
		return "Today"
	case ViewUpcoming:
		return "Upcoming"
	case ViewAll:
		return "All Tasks"
	case ViewCompleted:
		return "Completed"
	default:
		return string(v)
	}
}

// ParseView parses a view name.
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.IsValid() {
		return "", ErrInvalidView
	}
	return v, nil
}

// SortBy selects the primary sort key of a task list.
type SortBy string

const (
	SortByDueDate   SortBy = "due_date"
	SortByPriority  SortBy = "priority"
	SortByCreatedAt SortBy = "created_at"
)

// AllSortKeys returns all sort keys.
func AllSortKeys() []SortBy {
	return []SortBy{SortByDueDate, SortByPriority, SortByCreatedAt}
}

// IsValid returns true if the sort key is a known value.
func (s SortBy) IsValid() bool {
	switch s {
	case SortByDueDate, SortByPriority, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// ParseSortBy parses a sort key name.
func ParseSortBy(s string) (SortBy, error) {
	v := SortBy(s)
	if !v.IsValid() {
		return "", ErrInvalidSort
	}
	return v, nil
}

// Filters is the user-chosen filter configuration of a task list.
// It is ephemeral and never persisted as domain data.
// Fields are ordered to minimize memory padding.
type Filters struct {
	Priority   *Priority // nil = any priority
	View       View
	CategoryID string // empty = any category
	Search     string // case-insensitive title substring
}

// DefaultFilters returns the filters a fresh list starts with.
func DefaultFilters() Filters {
	return Filters{View: ViewToday}
}

// TimerFilter narrows continuous tasks by timer state.
type TimerFilter string

const (
	TimerAll       TimerFilter = "all"
	TimerActive    TimerFilter = "active"
	TimerPaused    TimerFilter = "paused"
	TimerCompleted TimerFilter = "completed"
)

// IsValid returns true if the timer filter is a known value.
func (f TimerFilter) IsValid() bool {
	switch f {
	case TimerAll, TimerActive, TimerPaused, TimerCompleted:
		return true
	default:
		return false
	}
}
