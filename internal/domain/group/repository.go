package group

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines operations for Group and Student entities.
type Repository interface {
	// Group methods
	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	UpdateGroup(ctx context.Context, g *Group) error
	ListGroupsByCatering(ctx context.Context, cateringID uuid.UUID) ([]*Group, error)

	// Student methods
	CreateStudent(ctx context.Context, s *Student) error
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	UpdateStudent(ctx context.Context, s *Student) error
	// ListEnrolled returns every student under the catering's root group
	// subtree, observed as a consistent snapshot.
	ListEnrolled(ctx context.Context, cateringID uuid.UUID) ([]*Student, error)
	// ListByGuardian returns students whose guardian list contains the
	// given full name, compared case-insensitively.
	ListByGuardian(ctx context.Context, guardian string) ([]*Student, error)
}
