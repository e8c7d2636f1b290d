package database

import (
	"context"
	"database/sql"
	"fmt"

	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresCateringRepository struct {
	db *sql.DB
}

func NewPostgresCateringRepository(db *sql.DB) *PostgresCateringRepository {
	return &PostgresCateringRepository{db: db}
}

func (r *PostgresCateringRepository) CreateWithRoot(ctx context.Context, c *catering.Catering, root *group.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting catering create transaction: %w", err)
	}
	defer tx.Rollback()

	cateringQuery := `INSERT INTO caterings (id, name, start_date, end_date, meals, weekdays, cutoff_time, root_group_id, archived, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(ctx, cateringQuery,
		c.ID, c.Name, c.Start, c.End, pq.Array(c.Meals), int16(c.Weekdays),
		cutoffString(c), c.RootGroupID, c.Archived, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return fmt.Errorf("error creating catering: %w", err)
	}

	groupQuery := `INSERT INTO groups (id, name, parent_id, catering_id, created_at, updated_at)
               VALUES ($1, $2, NULL, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, groupQuery,
		root.ID, root.Name, root.CateringID, root.CreatedAt, root.UpdatedAt,
	); err != nil {
		return fmt.Errorf("error creating root group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing catering create: %w", err)
	}
	return nil
}

const cateringColumns = `id, name, start_date, end_date, meals, weekdays, cutoff_time, root_group_id, archived, created_at, updated_at`

func (r *PostgresCateringRepository) GetByID(ctx context.Context, id uuid.UUID) (*catering.Catering, error) {
	query := `SELECT ` + cateringColumns + ` FROM caterings WHERE id = $1`
	c, err := scanCatering(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCateringNotFound
		}
		return nil, fmt.Errorf("error getting catering by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCateringRepository) Update(ctx context.Context, c *catering.Catering) error {
	query := `UPDATE caterings
               SET name = $1, start_date = $2, end_date = $3, meals = $4, weekdays = $5, cutoff_time = $6, archived = $7, updated_at = $8
               WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.Start, c.End, pq.Array(c.Meals), int16(c.Weekdays),
		cutoffString(c), c.Archived, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating catering: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCateringNotFound
	}
	return nil
}

func (r *PostgresCateringRepository) ListActive(ctx context.Context) ([]*catering.Catering, error) {
	query := `SELECT ` + cateringColumns + ` FROM caterings WHERE archived = FALSE ORDER BY name`
	return r.list(ctx, query)
}

func (r *PostgresCateringRepository) ListAll(ctx context.Context) ([]*catering.Catering, error) {
	query := `SELECT ` + cateringColumns + ` FROM caterings ORDER BY name`
	return r.list(ctx, query)
}

func (r *PostgresCateringRepository) list(ctx context.Context, query string) ([]*catering.Catering, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing caterings: %w", err)
	}
	defer rows.Close()

	caterings := make([]*catering.Catering, 0)
	for rows.Next() {
		c, err := scanCatering(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning catering: %w", err)
		}
		caterings = append(caterings, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating caterings: %w", err)
	}
	return caterings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatering(row rowScanner) (*catering.Catering, error) {
	c := &catering.Catering{}
	var meals pq.StringArray
	var weekdays int16
	var cutoff sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.Start, &c.End, &meals, &weekdays,
		&cutoff, &c.RootGroupID, &c.Archived, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Meals = []string(meals)
	c.Weekdays = catering.WeekdaySet(weekdays)
	c.Start = catering.DateOf(c.Start)
	c.End = catering.DateOf(c.End)
	if cutoff.Valid {
		t, err := catering.ParseTimeOfDay(cutoff.String)
		if err != nil {
			return nil, fmt.Errorf("stored cutoff time is malformed: %w", err)
		}
		c.Cutoff = &t
	}
	return c, nil
}

func cutoffString(c *catering.Catering) sql.NullString {
	if c.Cutoff == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.Cutoff.String(), Valid: true}
}
