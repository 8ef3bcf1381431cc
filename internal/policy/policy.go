// Package policy implements the purge/migrate decision the scan agent's
// output is filtered through, grounded on original_source's
// policy_engine_impl::run(): files untouched for 30 days are purged; files
// untouched for 2 days still sitting on the "performance" OST pool are
// migrated to capacity storage. Directories are never subject to either
// filter.
package policy

import (
	"time"

	"github.com/olcf/polimor/internal/codec"
)

const (
	// RemovalAge is how long a file can go unaccessed before it is purged.
	RemovalAge = 30 * 24 * time.Hour
	// MigrationAge is how long a file can go unaccessed on the performance
	// pool before it is migrated to capacity storage.
	MigrationAge = 2 * 24 * time.Hour
	// PerformancePool is the OST pool name that makes a stale file a
	// migration candidate instead of staying put.
	PerformancePool = "performance"
)

// Decision is the outcome of evaluating one scanned file against the
// purge/migrate filters.
type Decision int

const (
	// DecisionNone means the file is kept where it is.
	DecisionNone Decision = iota
	// DecisionPurge means the file should be removed.
	DecisionPurge
	// DecisionMigrate means the file should move off the performance pool.
	DecisionMigrate
)

func (d Decision) String() string {
	switch d {
	case DecisionPurge:
		return "purge"
	case DecisionMigrate:
		return "migrate"
	default:
		return "none"
	}
}

// Evaluate applies the purge/migrate filters to m as of now. The purge
// filter is checked first: a file old enough to purge is purged even if it
// would also qualify for migration.
func Evaluate(m *codec.ScanMessage, now time.Time) Decision {
	if m.Type != "f" {
		return DecisionNone
	}

	atime := time.Unix(int64(m.Atime), 0)

	if atime.Before(now.Add(-RemovalAge)) {
		return DecisionPurge
	}
	if atime.Before(now.Add(-MigrationAge)) && m.OSTPool == PerformancePool {
		return DecisionMigrate
	}
	return DecisionNone
}
