package usecase

import (
	"context"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/view"
)

// ListTasksInput contains the parameters for listing tasks.
// Fields are ordered to minimize memory padding.
type ListTasksInput struct {
	Filters domain.Filters     // View, category, priority and search
	Type    domain.TaskType    // Partition to list (empty = regular)
	SortBy  domain.SortBy      // Sort key (empty = due date)
	Status  domain.TimerFilter // Timer state filter, continuous only (empty = all)
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task      // Tasks in display order
	Today domain.Date         // The date the view was derived for
	Views map[domain.View]int // Per-view counts of the partition
}

// ListTasks is the use case for deriving a displayed task list.
type ListTasks struct {
	store *state.Store
	clock domain.Clock
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(store *state.Store, clock domain.Clock) *ListTasks {
	return &ListTasks{store: store, clock: clock}
}

// Execute partitions the entity store and runs the view pipeline.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	typ := in.Type
	if typ == "" {
		typ = domain.TaskTypeRegular
	}
	if !typ.IsValid() {
		return nil, domain.ErrInvalidTaskType
	}
	filters := in.Filters
	if filters.View == "" {
		filters.View = domain.ViewAll
	}
	if !filters.View.IsValid() {
		return nil, domain.ErrInvalidView
	}
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = domain.SortByDueDate
	}
	if !sortBy.IsValid() {
		return nil, domain.ErrInvalidSort
	}

	today := domain.DateOf(uc.clock.Now())
	partition := view.Partition(uc.store.Tasks(), typ)
	if in.Status != "" && in.Status != domain.TimerAll {
		if !in.Status.IsValid() {
			return nil, domain.ErrInvalidView
		}
		partition = view.Narrow(partition, view.ByStatus(in.Status))
	}

	return &ListTasksOutput{
		Tasks: view.Derive(partition, filters, sortBy, today),
		Today: today,
		Views: view.CountViews(partition, today),
	}, nil
}
