// Package store implements persistence on Postgres via pgx. Storage faults
// propagate to callers unmodified; absent rows surface as ErrNotFound.
package store

import "errors"

// ErrNotFound is returned when a lookup by identifier matches no row.
var ErrNotFound = errors.New("not found")
