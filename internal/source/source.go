// Package source adapts raw observation backends to the pipeline. A source
// enumerates work units (one per SQL table, one per discovered file) and
// fetches the records a unit has produced since its stored checkpoint.
package source

import (
	"context"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

// Batch is the set of new records fetched from one unit.
type Batch struct {
	// Records are the not-yet-consumed observations, in artifact order.
	Records []model.RawRecord
	// OffsetBased marks units checkpointed by row count (file sources).
	// Timestamp-filtered units leave it false.
	OffsetBased bool
	// BaseRow is the artifact row index of Records[0], for offset-based
	// units. Normally this equals the stored last_row; after a detected
	// truncation it resets to 0.
	BaseRow int64
}

// Source enumerates work units and fetches their new records.
type Source interface {
	// Name returns the configured source name.
	Name() string
	// Units lists the source IDs this source currently serves, sorted.
	// A SQL source serves exactly its own name; a file source serves each
	// discovered object name.
	Units(ctx context.Context) ([]string, error)
	// Fetch returns the records of unit not yet consumed according to
	// status. An empty batch means the unit has nothing new.
	Fetch(ctx context.Context, unit string, status model.ProcessingStatus) (Batch, error)
}
