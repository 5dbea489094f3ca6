package misc

import "sync"

var (
	runtimeEngineMode     = DefaultEngineMode()
	runtimeVerbosity      int
	runtimeEngineModeLock sync.RWMutex
)

// SetRuntimeEngineMode updates the global runtime engine mode.
func SetRuntimeEngineMode(mode EngineMode) {
	runtimeEngineModeLock.Lock()
	defer runtimeEngineModeLock.Unlock()

	runtimeEngineMode = mode
}

// RuntimeEngineMode returns the currently configured engine mode.
func RuntimeEngineMode() EngineMode {
	runtimeEngineModeLock.RLock()
	defer runtimeEngineModeLock.RUnlock()

	return runtimeEngineMode
}

// SetRuntimeVerbosity updates the global verbosity level.
func SetRuntimeVerbosity(level int) {
	runtimeEngineModeLock.Lock()
	defer runtimeEngineModeLock.Unlock()

	runtimeVerbosity = level
}

// RuntimeVerbosity returns the verbosity level. Level 1 prints per-tile
// progress, level 2 adds per-cycle accumulation traces.
func RuntimeVerbosity() int {
	runtimeEngineModeLock.RLock()
	defer runtimeEngineModeLock.RUnlock()

	return runtimeVerbosity
}
