// Package state persists lint run history in SQLite.
// It records one run per analyzed program together with its defects.
package state

import (
	"errors"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// Type aliases so callers can stay on this package.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// Run is an alias for core.Run.
	Run = core.Run

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus
)

var (
	// ErrNotOpened is returned by every operation before Open.
	ErrNotOpened = errors.New("database not opened")

	// ErrRunNotFound is returned when no run has the requested ID.
	ErrRunNotFound = errors.New("run not found")
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
