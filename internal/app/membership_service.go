package app

import (
	"context"
	"fmt"
	"strings"

	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
)

// Group-tree errors surfaced by re-parenting.
var (
	ErrGroupCycle        = fmt.Errorf("new parent is a descendant of the group being moved")
	ErrCrossCateringMove = fmt.Errorf("group cannot move to a different catering's tree")
)

// MembershipService manages the group tree and student enrollment under
// each catering's root group.
type MembershipService struct {
	groupRepo group.Repository
	clock     Clock
}

func NewMembershipService(gr group.Repository, clock Clock) *MembershipService {
	return &MembershipService{groupRepo: gr, clock: clock}
}

// AddGroup creates a group under parentID, inheriting its catering scope.
func (s *MembershipService) AddGroup(ctx context.Context, parentID uuid.UUID, name string) (*group.Group, error) {
	parent, err := s.groupRepo.GetGroup(ctx, parentID)
	if err != nil {
		return nil, err
	}

	g, err := group.NewChild(parent, name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return g, nil
}

// RenameGroup updates a group's display name.
func (s *MembershipService) RenameGroup(ctx context.Context, id uuid.UUID, name string) (*group.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, group.ErrMissingRequiredField
	}

	g, err := s.groupRepo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.UpdatedAt = s.clock.Now()
	if err := s.groupRepo.UpdateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to rename group: %w", err)
	}
	return g, nil
}

// ReparentGroup moves a group under a new parent within the same catering
// tree. Moving a group under its own descendant would cut a cycle into the
// tree and is rejected.
func (s *MembershipService) ReparentGroup(ctx context.Context, id, newParentID uuid.UUID) (*group.Group, error) {
	g, err := s.groupRepo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	newParent, err := s.groupRepo.GetGroup(ctx, newParentID)
	if err != nil {
		return nil, err
	}

	if newParent.CateringID != g.CateringID {
		return nil, ErrCrossCateringMove
	}

	descendant, err := s.isDescendant(ctx, g, newParent)
	if err != nil {
		return nil, err
	}
	if descendant || newParent.ID == g.ID {
		return nil, ErrGroupCycle
	}

	parentID := newParent.ID
	g.ParentID = &parentID
	g.UpdatedAt = s.clock.Now()
	if err := s.groupRepo.UpdateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to reparent group: %w", err)
	}
	return g, nil
}

// isDescendant walks up from candidate towards the root, looking for g.
func (s *MembershipService) isDescendant(ctx context.Context, g, candidate *group.Group) (bool, error) {
	groups, err := s.groupRepo.ListGroupsByCatering(ctx, g.CateringID)
	if err != nil {
		return false, err
	}
	byID := make(map[uuid.UUID]*group.Group, len(groups))
	for _, gr := range groups {
		byID[gr.ID] = gr
	}

	cur := candidate
	for cur != nil && cur.ParentID != nil {
		if *cur.ParentID == g.ID {
			return true, nil
		}
		cur = byID[*cur.ParentID]
	}
	return false, nil
}

// AddStudent enrolls a new student in the given group. First and last name
// are required.
func (s *MembershipService) AddStudent(ctx context.Context, groupID uuid.UUID, firstName, lastName string, allergies, guardians []string) (*group.Student, error) {
	g, err := s.groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	st, err := group.NewStudent(g, firstName, lastName, allergies, guardians, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.CreateStudent(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return st, nil
}

// UpdateStudent replaces a student's mutable fields, revalidating the
// required names.
func (s *MembershipService) UpdateStudent(ctx context.Context, id uuid.UUID, firstName, lastName string, allergies, guardians []string) (*group.Student, error) {
	st, err := s.groupRepo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, group.ErrMissingRequiredField
	}

	st.FirstName = firstName
	st.LastName = lastName
	st.Allergies = allergies
	st.Guardians = guardians
	st.UpdatedAt = s.clock.Now()
	if err := s.groupRepo.UpdateStudent(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return st, nil
}

// ListEnrolled returns all students under the catering's root group.
func (s *MembershipService) ListEnrolled(ctx context.Context, cateringID uuid.UUID) ([]*group.Student, error) {
	return s.groupRepo.ListEnrolled(ctx, cateringID)
}
