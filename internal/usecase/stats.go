package usecase

import (
	"context"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/view"
)

// TaskStatsOutput contains aggregate counts for both partitions.
// Fields are ordered to minimize memory padding.
type TaskStatsOutput struct {
	Views      map[domain.View]int     // Regular partition per-view counts
	Priorities map[domain.Priority]int // Open regular tasks per priority
	Categories map[string]int          // Open tasks per category id
	Continuous view.Summary            // Continuous partition summary
}

// TaskStats is the use case for computing dashboard counts.
type TaskStats struct {
	store *state.Store
	clock domain.Clock
}

// NewTaskStats creates a new TaskStats use case.
func NewTaskStats(store *state.Store, clock domain.Clock) *TaskStats {
	return &TaskStats{store: store, clock: clock}
}

// Execute computes the counts from the entity store.
func (uc *TaskStats) Execute(_ context.Context) (*TaskStatsOutput, error) {
	tasks := uc.store.Tasks()
	regular := view.Partition(tasks, domain.TaskTypeRegular)
	today := domain.DateOf(uc.clock.Now())

	return &TaskStatsOutput{
		Views:      view.CountViews(regular, today),
		Priorities: view.CountByPriority(regular),
		Categories: view.CountByCategory(tasks),
		Continuous: view.Summarize(tasks),
	}, nil
}
