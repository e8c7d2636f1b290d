package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// serializationFailure is the Postgres SQLSTATE raised when concurrent
// transactions cannot be serialized; such writes are retried once.
const serializationFailure = "40001"

type PostgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

func (r *PostgresAttendanceRepository) Upsert(ctx context.Context, rec *attendance.CancellationRecord) error {
	query := `INSERT INTO cancellation_records (student_id, catering_id, day, cancelled, recorded_at)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (student_id, catering_id, day)
               DO UPDATE SET cancelled = EXCLUDED.cancelled, recorded_at = EXCLUDED.recorded_at`

	err := r.exec(ctx, query, rec.StudentID, rec.CateringID, rec.Date, rec.Cancelled, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("error upserting cancellation record: %w", err)
	}
	return nil
}

// exec runs the statement, retrying once on a serialization failure before
// surfacing ErrConcurrencyConflict.
func (r *PostgresAttendanceRepository) exec(ctx context.Context, query string, args ...any) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	if isSerializationFailure(err) {
		if _, err = r.db.ExecContext(ctx, query, args...); isSerializationFailure(err) {
			return ErrConcurrencyConflict
		}
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == serializationFailure
}

func (r *PostgresAttendanceRepository) Get(ctx context.Context, key attendance.Key) (*attendance.CancellationRecord, error) {
	query := `SELECT student_id, catering_id, day, cancelled, recorded_at
               FROM cancellation_records WHERE student_id = $1 AND catering_id = $2 AND day = $3`
	rec := &attendance.CancellationRecord{}
	err := r.db.QueryRowContext(ctx, query, key.StudentID, key.CateringID, key.Date).
		Scan(&rec.StudentID, &rec.CateringID, &rec.Date, &rec.Cancelled, &rec.RecordedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting cancellation record: %w", err)
	}
	rec.Date = catering.DateOf(rec.Date)
	return rec, nil
}

func (r *PostgresAttendanceRepository) ListByCateringRange(ctx context.Context, cateringID uuid.UUID, from, to time.Time) ([]*attendance.CancellationRecord, error) {
	query := `SELECT student_id, catering_id, day, cancelled, recorded_at
               FROM cancellation_records
               WHERE catering_id = $1 AND day >= $2 AND day <= $3
               ORDER BY day`
	rows, err := r.db.QueryContext(ctx, query, cateringID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error listing cancellation records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// MonthSnapshot reads enrollment and the ledger inside one repeatable-read
// transaction so the aggregator never mixes a partially applied
// cancellation with stale enrollment.
func (r *PostgresAttendanceRepository) MonthSnapshot(ctx context.Context, cateringID uuid.UUID, from, to time.Time) (*attendance.Snapshot, error) {
	snap, err := r.monthSnapshot(ctx, cateringID, from, to)
	if isSerializationFailure(err) {
		if snap, err = r.monthSnapshot(ctx, cateringID, from, to); isSerializationFailure(err) {
			return nil, ErrConcurrencyConflict
		}
	}
	return snap, err
}

func (r *PostgresAttendanceRepository) monthSnapshot(ctx context.Context, cateringID uuid.UUID, from, to time.Time) (*attendance.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("error starting snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	studentRows, err := tx.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE catering_id = $1 ORDER BY last_name, first_name`, cateringID)
	if err != nil {
		return nil, fmt.Errorf("error reading enrollment snapshot: %w", err)
	}
	students := make([]*group.Student, 0)
	for studentRows.Next() {
		s, err := scanStudent(studentRows)
		if err != nil {
			studentRows.Close()
			return nil, fmt.Errorf("error scanning student snapshot: %w", err)
		}
		students = append(students, s)
	}
	studentRows.Close()
	if err = studentRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student snapshot: %w", err)
	}

	recordRows, err := tx.QueryContext(ctx,
		`SELECT student_id, catering_id, day, cancelled, recorded_at
               FROM cancellation_records
               WHERE catering_id = $1 AND day >= $2 AND day <= $3 ORDER BY day`,
		cateringID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger snapshot: %w", err)
	}
	records, err := collectRecords(recordRows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing snapshot transaction: %w", err)
	}
	return &attendance.Snapshot{Students: students, Records: records}, nil
}

func collectRecords(rows *sql.Rows) ([]*attendance.CancellationRecord, error) {
	defer rows.Close()

	records := make([]*attendance.CancellationRecord, 0)
	for rows.Next() {
		rec := &attendance.CancellationRecord{}
		if err := rows.Scan(&rec.StudentID, &rec.CateringID, &rec.Date, &rec.Cancelled, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning cancellation record: %w", err)
		}
		rec.Date = catering.DateOf(rec.Date)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cancellation records: %w", err)
	}
	return records, nil
}
