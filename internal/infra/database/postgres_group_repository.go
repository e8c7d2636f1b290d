package database

import (
	"context"
	"database/sql"
	"fmt"

	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, g *group.Group) error {
	query := `INSERT INTO groups (id, name, parent_id, catering_id, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, g.ID, g.Name, parentID(g), g.CateringID, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating group: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	query := `SELECT id, name, parent_id, catering_id, created_at, updated_at FROM groups WHERE id = $1`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("error getting group by ID: %w", err)
	}
	return g, nil
}

func (r *PostgresGroupRepository) UpdateGroup(ctx context.Context, g *group.Group) error {
	query := `UPDATE groups SET name = $1, parent_id = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, g.Name, parentID(g), g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("error updating group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) ListGroupsByCatering(ctx context.Context, cateringID uuid.UUID) ([]*group.Group, error) {
	query := `SELECT id, name, parent_id, catering_id, created_at, updated_at
               FROM groups WHERE catering_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, cateringID)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*group.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

const studentColumns = `id, first_name, last_name, allergies, guardians, group_id, catering_id, created_at, updated_at`

func (r *PostgresGroupRepository) CreateStudent(ctx context.Context, s *group.Student) error {
	query := `INSERT INTO students (` + studentColumns + `)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.FirstName, s.LastName,
		pq.Array(s.Allergies), pq.Array(s.Guardians), s.GroupID, s.CateringID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) GetStudent(ctx context.Context, id uuid.UUID) (*group.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	s, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresGroupRepository) UpdateStudent(ctx context.Context, s *group.Student) error {
	query := `UPDATE students
               SET first_name = $1, last_name = $2, allergies = $3, guardians = $4, group_id = $5, updated_at = $6
               WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, s.FirstName, s.LastName,
		pq.Array(s.Allergies), pq.Array(s.Guardians), s.GroupID, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) ListEnrolled(ctx context.Context, cateringID uuid.UUID) ([]*group.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE catering_id = $1 ORDER BY last_name, first_name`
	return r.listStudents(ctx, query, cateringID)
}

func (r *PostgresGroupRepository) ListByGuardian(ctx context.Context, guardian string) ([]*group.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students
               WHERE EXISTS (SELECT 1 FROM UNNEST(guardians) AS g WHERE LOWER(g) = LOWER($1))
               ORDER BY last_name, first_name`
	return r.listStudents(ctx, query, guardian)
}

func (r *PostgresGroupRepository) listStudents(ctx context.Context, query string, args ...any) ([]*group.Student, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*group.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}

func scanGroup(row rowScanner) (*group.Group, error) {
	g := &group.Group{}
	var parent uuid.NullUUID
	if err := row.Scan(&g.ID, &g.Name, &parent, &g.CateringID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		id := parent.UUID
		g.ParentID = &id
	}
	return g, nil
}

func scanStudent(row rowScanner) (*group.Student, error) {
	s := &group.Student{}
	var allergies, guardians pq.StringArray
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &allergies, &guardians,
		&s.GroupID, &s.CateringID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Allergies = []string(allergies)
	s.Guardians = []string(guardians)
	return s, nil
}

func parentID(g *group.Group) uuid.NullUUID {
	if g.ParentID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *g.ParentID, Valid: true}
}
