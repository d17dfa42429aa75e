// Package config loads the security policy and CLI-facing configuration
// described in spec §6.2, following the pack's preference for YAML-shaped
// configuration (gopkg.in/yaml.v3) over a bespoke format.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityPolicy carries the limits enforced by the recursion/loop/
// timeout guards (spec §4.7) and the concurrency quota (spec §4.8).
type SecurityPolicy struct {
	MaxRecursionDepth   int   `yaml:"max_recursion_depth"`
	MaxLoopIterations   int64 `yaml:"max_loop_iterations"`
	MaxExecutionMS      int64 `yaml:"max_execution_ms"`
	MaxAsyncTasks       int   `yaml:"max_async_tasks"`
	AllowSetAccessible  bool  `yaml:"allow_set_accessible"`
}

// Default returns a permissive but bounded policy: the loop-iteration and
// execution-time limits are 0 ("disabled"), recursion depth is capped at
// 2048 and concurrent async tasks at 64.
func Default() SecurityPolicy {
	return SecurityPolicy{
		MaxRecursionDepth:  2048,
		MaxLoopIterations:  0,
		MaxExecutionMS:     0,
		MaxAsyncTasks:      64,
		AllowSetAccessible: false,
	}
}

// Load reads a YAML document from path and overlays it onto Default().
func Load(path string) (SecurityPolicy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}
