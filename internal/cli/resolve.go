package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// matchID resolves arg against ids. An exact id wins; otherwise arg must be
// a unique prefix or suffix (the short id shown in lists is a suffix).
func matchID(ids []string, arg string) (string, bool, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return "", false, domain.ErrMissingID
	}

	var found string
	matches := 0
	for _, id := range ids {
		if id == arg {
			return id, true, nil
		}
		if strings.HasPrefix(id, arg) || strings.HasSuffix(id, arg) {
			found = id
			matches++
		}
	}
	switch matches {
	case 0:
		return "", false, nil
	case 1:
		return found, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", domain.ErrAmbiguousID, arg)
	}
}

// resolveTaskID resolves a full or shortened task id from the loaded state.
func resolveTaskID(store *state.Store, arg string) (string, error) {
	tasks := store.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	id, ok, err := matchID(ids, arg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrTaskNotFound, arg)
	}
	return id, nil
}

// resolveSubtaskID resolves a full or shortened subtask id from the loaded state.
func resolveSubtaskID(store *state.Store, arg string) (string, error) {
	var ids []string
	for _, t := range store.Tasks() {
		for _, s := range t.Subtasks {
			ids = append(ids, s.ID)
		}
	}
	id, ok, err := matchID(ids, arg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSubtaskNotFound, arg)
	}
	return id, nil
}

// resolveCategoryID resolves a category by id, shortened id or name (case-insensitive).
func resolveCategoryID(store *state.Store, arg string) (string, error) {
	categories := store.Categories()
	ids := make([]string, len(categories))
	for i, c := range categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(arg)) {
			return c.ID, nil
		}
		ids[i] = c.ID
	}
	id, ok, err := matchID(ids, arg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, arg)
	}
	return id, nil
}

// categoryName returns the display name of a category id.
func categoryName(store *state.Store, id string) string {
	if id == "" {
		return "-"
	}
	if c := store.Category(id); c != nil {
		return c.Name
	}
	return "-"
}
