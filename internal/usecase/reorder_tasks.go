package usecase

import (
	"context"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// ReorderTasksInput contains the parameters for reordering a partition.
type ReorderTasksInput struct {
	Type domain.TaskType // Partition to reorder
	IDs  []string        // Every task ID of the partition, in the new order
}

// ReorderTasksOutput contains the result of reordering a partition.
type ReorderTasksOutput struct {
	Tasks []*domain.Task // The partition in its new order
}

// ReorderTasks is the use case for rewriting the order of one partition.
type ReorderTasks struct {
	repo  domain.TaskRepository
	store *state.Store
}

// NewReorderTasks creates a new ReorderTasks use case.
func NewReorderTasks(repo domain.TaskRepository, store *state.Store) *ReorderTasks {
	return &ReorderTasks{repo: repo, store: store}
}

// Execute sets each task's order index to its 0-based position in IDs.
// IDs must be exactly the partition's id set; partial orders are rejected.
// The change is written as one batch and applied to memory as one update,
// so no reader sees a half-applied order.
func (uc *ReorderTasks) Execute(ctx context.Context, in ReorderTasksInput) (*ReorderTasksOutput, error) {
	if !in.Type.IsValid() {
		return nil, domain.ErrInvalidTaskType
	}

	partition := uc.store.TasksByType(in.Type)
	if len(in.IDs) != len(partition) {
		return nil, domain.ErrReorderMismatch
	}
	members := make(map[string]bool, len(partition))
	for _, t := range partition {
		members[t.ID] = true
	}

	orders := make([]domain.TaskOrder, 0, len(in.IDs))
	indexes := make(map[string]int, len(in.IDs))
	for i, id := range in.IDs {
		if !members[id] {
			return nil, domain.ErrReorderMismatch
		}
		if _, dup := indexes[id]; dup {
			return nil, domain.ErrReorderMismatch
		}
		indexes[id] = i
		orders = append(orders, domain.TaskOrder{TaskID: id, OrderIndex: i})
	}

	if err := uc.repo.SaveTaskOrder(ctx, orders); err != nil {
		return nil, domain.NewStoreError("save task order", err)
	}
	uc.store.ApplyOrder(indexes)

	return &ReorderTasksOutput{Tasks: uc.store.TasksByType(in.Type)}, nil
}
