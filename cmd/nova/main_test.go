package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEngineWithoutPolicyLoadsModulesAndStubFrontend(t *testing.T) {
	e := buildEngine("")

	v, err := e.Eval("5 + 6")
	require.NoError(t, err)
	assert.Equal(t, int32(11), v.I)

	_, ok := e.Global().Get("json.parse")
	assert.True(t, ok)
}

func TestBuildEngineLoadsYAMLPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_recursion_depth: 3\n"), 0o644))

	e := buildEngine(path)
	v, err := e.Eval("9")
	require.NoError(t, err)
	assert.Equal(t, int32(9), v.I)
}

func TestBuildEngineFallsBackToDefaultsOnUnreadablePolicy(t *testing.T) {
	e := buildEngine(filepath.Join(t.TempDir(), "missing.yaml"))
	v, err := e.Eval("1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.I)
}
