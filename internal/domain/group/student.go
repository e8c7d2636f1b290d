package group

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Student belongs to exactly one group and, through that group's root,
// to exactly one catering.
type Student struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Allergies  []string // free-text allergy notes, may be empty
	Guardians  []string // guardian full names, free text
	GroupID    uuid.UUID
	CateringID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewStudent validates the name fields and builds a Student enrolled in g.
func NewStudent(g *Group, firstName, lastName string, allergies, guardians []string, now time.Time) (*Student, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, ErrMissingRequiredField
	}
	return &Student{
		ID:         uuid.New(),
		FirstName:  firstName,
		LastName:   lastName,
		Allergies:  cleanList(allergies),
		Guardians:  cleanList(guardians),
		GroupID:    g.ID,
		CateringID: g.CateringID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// FullName returns the display name used for guardian message matching.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
