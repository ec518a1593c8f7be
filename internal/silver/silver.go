// Package silver transforms raw bronze rows into the cleaned, conformed
// silver tables. Each table has a pure transform function operating on
// in-memory rows; the engine wraps it with a bronze read, a staged write,
// and a swap into the live table.
package silver

import "time"

// Counters accumulates row-level repairs per table. Individual bad values
// are absorbed by the rules and surface only here, never as per-row logs.
type Counters struct {
	RowsIn  int
	RowsOut int
	// RowsDropped counts rows removed for a missing mandatory key.
	RowsDropped int
	// DuplicatesDropped counts rows collapsed by deduplication.
	DuplicatesDropped int
	// NullsDefaulted counts NULL or unmapped values replaced with a default
	// (zero cost, N/A enum values, N/A country).
	NullsDefaulted int
	// ValuesRecomputed counts derived values: repaired sales measures and
	// recomputed product end dates.
	ValuesRecomputed int
	// DatesNulled counts invalid or future dates replaced with NULL.
	DatesNulled int
}

// StepResult reports one silver table transform.
type StepResult struct {
	Table    string
	Counters Counters
	Duration time.Duration
	Err      error
}
