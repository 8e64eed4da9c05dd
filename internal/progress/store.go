// Package progress persists per-source consumption checkpoints. Each source
// has at most one processing_status row; readers get a default row when none
// exists yet, and writers update only the fields a cycle actually advanced.
package progress

import (
	"context"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

// StatusUpdate carries the checkpoint fields to advance. A nil field leaves
// the stored value untouched.
type StatusUpdate struct {
	LastRawTimestamp *string
	LastAvgTimestamp *string
	LastRow          *int64
}

// String pointers a string for use in a StatusUpdate.
func String(s string) *string {
	return &s
}

// Int64 pointers an int64 for use in a StatusUpdate.
func Int64(n int64) *int64 {
	return &n
}

// Store reads and advances per-source processing checkpoints.
type Store interface {
	// Get returns the checkpoint row for sourceID. When no row exists it
	// returns a default row (empty timestamps, LastRow 0) without creating it.
	Get(ctx context.Context, sourceID string) (model.ProcessingStatus, error)
	// Upsert creates the row if absent and applies the non-nil fields of
	// update atomically. Fields left nil keep their stored values.
	Upsert(ctx context.Context, sourceID string, update StatusUpdate) error
	Close() error
}
