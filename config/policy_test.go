package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalang/nova/config"
)

func TestDefaultIsPermissiveButBounded(t *testing.T) {
	p := config.Default()
	assert.Equal(t, 2048, p.MaxRecursionDepth)
	assert.Equal(t, int64(0), p.MaxLoopIterations)
	assert.Equal(t, int64(0), p.MaxExecutionMS)
	assert.Equal(t, 64, p.MaxAsyncTasks)
	assert.False(t, p.AllowSetAccessible)
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_recursion_depth: 10
max_async_tasks: 2
allow_set_accessible: true
`), 0o644))

	p, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, p.MaxRecursionDepth)
	assert.Equal(t, 2, p.MaxAsyncTasks)
	assert.True(t, p.AllowSetAccessible)
	// Fields absent from the document keep their Default() value.
	assert.Equal(t, int64(0), p.MaxLoopIterations)
}

func TestLoadMissingFileReturnsDefaultsAndError(t *testing.T) {
	p, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, config.Default(), p)
}
