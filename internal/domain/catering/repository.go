package catering

import (
	"context"

	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
)

// Repository defines the operations for persisting and retrieving Catering entities.
type Repository interface {
	// CreateWithRoot persists a catering together with its synthetic root
	// group as one atomic write; neither survives a failure of the other.
	CreateWithRoot(ctx context.Context, c *Catering, root *group.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*Catering, error)
	Update(ctx context.Context, c *Catering) error
	ListActive(ctx context.Context) ([]*Catering, error)
	ListAll(ctx context.Context) ([]*Catering, error)
}
