package attendance

import (
	"context"
	"time"

	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
)

// Repository defines operations for the cancellation ledger. Writes to the
// same key are serialized by the implementation; unrelated keys proceed in
// parallel.
type Repository interface {
	// Upsert creates or overwrites the record for its key. Idempotent.
	Upsert(ctx context.Context, r *CancellationRecord) error
	Get(ctx context.Context, key Key) (*CancellationRecord, error)
	// ListByCateringRange returns all records for the catering with
	// from <= date <= to, as a consistent snapshot.
	ListByCateringRange(ctx context.Context, cateringID uuid.UUID, from, to time.Time) ([]*CancellationRecord, error)
}

// Snapshot is enrollment and ledger state for one catering, read at a
// single point in time.
type Snapshot struct {
	Students []*group.Student
	Records  []*CancellationRecord
}

// SnapshotReader produces consistent snapshots for aggregation: the
// returned students and records never mix a partially applied write with
// stale enrollment.
type SnapshotReader interface {
	MonthSnapshot(ctx context.Context, cateringID uuid.UUID, from, to time.Time) (*Snapshot, error)
}
