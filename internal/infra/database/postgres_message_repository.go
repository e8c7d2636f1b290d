package database

import (
	"context"
	"database/sql"
	"fmt"

	"catering_attendance_service/internal/domain/message"

	"github.com/google/uuid"
)

type PostgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

const messageColumns = `id, phone, guardian, content, reply, processed, arrived_at, created_at`

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.ReceivedMessage) error {
	query := `INSERT INTO guardian_messages (` + messageColumns + `)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Phone, m.Guardian, m.Content,
		m.Reply, m.Processed, m.ArrivedAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating guardian message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.ReceivedMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM guardian_messages WHERE id = $1`
	m := &message.ReceivedMessage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Phone, &m.Guardian,
		&m.Content, &m.Reply, &m.Processed, &m.ArrivedAt, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("error getting guardian message: %w", err)
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListUnprocessed(ctx context.Context, limit int) ([]*message.ReceivedMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM guardian_messages
               WHERE processed = FALSE ORDER BY arrived_at LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing unprocessed messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*message.ReceivedMessage, 0)
	for rows.Next() {
		m := &message.ReceivedMessage{}
		if err := rows.Scan(&m.ID, &m.Phone, &m.Guardian, &m.Content,
			&m.Reply, &m.Processed, &m.ArrivedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning guardian message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guardian messages: %w", err)
	}
	return msgs, nil
}

func (r *PostgresMessageRepository) MarkProcessed(ctx context.Context, id uuid.UUID, reply string) error {
	query := `UPDATE guardian_messages SET processed = TRUE, reply = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, reply, id)
	if err != nil {
		return fmt.Errorf("error marking message processed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMessageNotFound
	}
	return nil
}
