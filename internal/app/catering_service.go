package app

import (
	"context"
	"fmt"

	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
)

// CateringService owns the catering lifecycle: validated creation with the
// synthetic root group, revalidated updates and soft archival.
type CateringService struct {
	cateringRepo catering.Repository
	groupRepo    group.Repository
	clock        Clock
}

func NewCateringService(cr catering.Repository, gr group.Repository, clock Clock) *CateringService {
	return &CateringService{
		cateringRepo: cr,
		groupRepo:    gr,
		clock:        clock,
	}
}

// CreateCatering validates in and persists the new catering together with
// its root group. On a validation failure nothing is persisted.
func (s *CateringService) CreateCatering(ctx context.Context, in catering.Input) (*catering.Catering, error) {
	now := s.clock.Now()

	c, err := catering.New(in, now)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.New()

	root := group.NewRoot(c.ID, c.Name, now)
	c.RootGroupID = root.ID

	if err := s.cateringRepo.CreateWithRoot(ctx, c, root); err != nil {
		return nil, fmt.Errorf("failed to persist catering: %w", err)
	}
	return c, nil
}

// UpdateCatering revalidates in against the same rules as creation and
// applies it to the existing catering.
func (s *CateringService) UpdateCatering(ctx context.Context, id uuid.UUID, in catering.Input) (*catering.Catering, error) {
	c, err := s.cateringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Apply(in, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.cateringRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update catering: %w", err)
	}
	return c, nil
}

// ArchiveCatering soft-archives the catering. Enrolled students are kept;
// an archived catering simply has no active days.
func (s *CateringService) ArchiveCatering(ctx context.Context, id uuid.UUID) (*catering.Catering, error) {
	c, err := s.cateringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Archived {
		return c, nil
	}

	c.Archived = true
	c.UpdatedAt = s.clock.Now()
	if err := s.cateringRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to archive catering: %w", err)
	}
	return c, nil
}

// GetCatering fetches a catering by id.
func (s *CateringService) GetCatering(ctx context.Context, id uuid.UUID) (*catering.Catering, error) {
	return s.cateringRepo.GetByID(ctx, id)
}
