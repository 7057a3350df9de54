package cli

import (
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCommands(t *testing.T) {
	d, _ := newTestDeps(t)

	out, err := run(t, newCategoryCommand(d), "new", "Hobby", "--color", "#123ABC")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category")

	task := mustCreate(t, d, "--title", "Paint", "--category", "hobby")

	out, err = run(t, newCategoryCommand(d), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Personal")
	assert.Contains(t, out, "Projects")
	assert.Contains(t, out, "#123ABC")
	assert.Contains(t, out, "Hobby")

	out, err = run(t, newCategoryCommand(d), "rm", "Hobby")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted category Hobby")
	assert.Len(t, d.c.State.Categories(), 3)

	// Tasks keep the dangling reference and render as uncategorized
	got := d.c.State.Task(task.ID)
	assert.NotEmpty(t, got.CategoryID)
	assert.Equal(t, "-", categoryName(d.c.State, got.CategoryID))
}

func TestCategoryNewCommand_InvalidColor(t *testing.T) {
	d, _ := newTestDeps(t)

	_, err := run(t, newCategoryCommand(d), "new", "Hobby", "--color", "red")
	assert.ErrorIs(t, err, domain.ErrInvalidColor)
}

func TestCategoryRmCommand_NotFound(t *testing.T) {
	d, _ := newTestDeps(t)

	_, err := run(t, newCategoryCommand(d), "rm", "Hobby")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
