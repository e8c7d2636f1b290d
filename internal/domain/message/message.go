package message

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReceivedMessage is a free-text cancellation request from a guardian,
// stored by the transport layer and polled by the processing job.
type ReceivedMessage struct {
	ID        uuid.UUID
	Phone     string
	Guardian  string // guardian full name resolved by the transport layer
	Content   string
	Reply     string
	Processed bool
	ArrivedAt time.Time
	CreatedAt time.Time
}

// Repository defines operations for guardian messages.
type Repository interface {
	Create(ctx context.Context, m *ReceivedMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*ReceivedMessage, error)
	ListUnprocessed(ctx context.Context, limit int) ([]*ReceivedMessage, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, reply string) error
}
