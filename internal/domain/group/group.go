// internal/domain/group/group.go
package group

import (
	"strings"
	"time"

	"catering_attendance_service/internal/domain/domainerr"

	"github.com/google/uuid"
)

var ErrMissingRequiredField = domainerr.New(domainerr.KindMissingRequiredField, "required field is empty")

// Group is a node in a catering's enrollment tree. The root group of a
// catering has no parent; every descendant inherits the root's catering
// scope, denormalized here as CateringID.
type Group struct {
	ID         uuid.UUID
	Name       string
	ParentID   *uuid.UUID // nil for a catering's synthetic root
	CateringID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRoot builds the synthetic top-level group created alongside a catering.
func NewRoot(cateringID uuid.UUID, name string, now time.Time) *Group {
	return &Group{
		ID:         uuid.New(),
		Name:       name,
		CateringID: cateringID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewChild builds a group under parent, inheriting its catering scope.
func NewChild(parent *Group, name string, now time.Time) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingRequiredField
	}
	parentID := parent.ID
	return &Group{
		ID:         uuid.New(),
		Name:       name,
		ParentID:   &parentID,
		CateringID: parent.CateringID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
