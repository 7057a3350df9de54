package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowCommand(t *testing.T) {
	d, _ := newTestDeps(t)
	path := filepath.Join(d.c.Config.DataDir, domain.ConfigFileName)

	out, err := run(t, newConfigCommand(d), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, path+" (not found)")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "[tasks]")

	require.NoError(t, os.WriteFile(path, []byte("[timer]\nstop_on_complete = true\n"), 0o644))

	out, err = run(t, newConfigCommand(d), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "- "+path+"\n")
	assert.Contains(t, out, "stop_on_complete = true")
}

func TestConfigTemplateCommand(t *testing.T) {
	d, _ := newTestDeps(t)

	out, err := run(t, newConfigCommand(d), "template")
	require.NoError(t, err)
	assert.Contains(t, out, "# tempo configuration")
	assert.Contains(t, out, d.c.Config.DataDir)
	assert.Contains(t, out, `store = "json"`)
	assert.NoFileExists(t, filepath.Join(d.c.Config.DataDir, domain.ConfigFileName))
}

func TestConfigInitCommand(t *testing.T) {
	d, _ := newTestDeps(t)
	path := filepath.Join(d.c.Config.DataDir, domain.ConfigFileName)

	out, err := run(t, newConfigCommand(d), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `id = "alice"`)

	_, err = run(t, newConfigCommand(d), "init")
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestConfigInitCommand_NoGlobalDir(t *testing.T) {
	d, _ := newTestDeps(t)

	_, err := run(t, newConfigCommand(d), "init", "--global")
	assert.Error(t, err)
}
