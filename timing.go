// FILE: lixenwraith/propbind/timing.go
package propbind

import "time"

// Core timing constants for production use.
const (
	// File watching intervals (ordered by frequency)
	MinPollInterval     = 100 * time.Millisecond // Hard floor for file stat polling
	DefaultDebounce     = 500 * time.Millisecond // File change coalescence period
	DefaultPollInterval = time.Second            // Standard file monitoring frequency

	// DefaultConnectTimeout bounds connecting to and disconnecting from a remote store
	DefaultConnectTimeout = 10 * time.Second
)
