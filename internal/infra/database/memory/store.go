// Package memory is the embedded storage driver: the development and test
// backend of the same repository contracts the Postgres driver serves.
// Writes to one cancellation key are serialized on a striped lock while
// unrelated keys proceed in parallel; every read hands out copies taken
// under one lock, so aggregation sees a consistent snapshot.
package memory

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"
	"catering_attendance_service/internal/domain/message"
	idb "catering_attendance_service/internal/infra/database"

	"github.com/google/uuid"
)

const keyStripes = 64

// Store owns the shared maps. The typed repository views returned by
// Caterings, Groups, Attendance and Messages all operate on the same state.
type Store struct {
	mu        sync.RWMutex
	caterings map[uuid.UUID]*catering.Catering
	groups    map[uuid.UUID]*group.Group
	students  map[uuid.UUID]*group.Student
	records   map[attendance.Key]*attendance.CancellationRecord
	messages  map[uuid.UUID]*message.ReceivedMessage

	keyLocks [keyStripes]sync.Mutex
}

func NewStore() *Store {
	return &Store{
		caterings: make(map[uuid.UUID]*catering.Catering),
		groups:    make(map[uuid.UUID]*group.Group),
		students:  make(map[uuid.UUID]*group.Student),
		records:   make(map[attendance.Key]*attendance.CancellationRecord),
		messages:  make(map[uuid.UUID]*message.ReceivedMessage),
	}
}

func (s *Store) Caterings() catering.Repository    { return cateringRepo{s} }
func (s *Store) Groups() group.Repository          { return groupRepo{s} }
func (s *Store) Attendance() attendance.Repository { return attendanceRepo{s} }
func (s *Store) Snapshots() attendance.SnapshotReader {
	return attendanceRepo{s}
}
func (s *Store) Messages() message.Repository { return messageRepo{s} }

// --- catering.Repository ---

type cateringRepo struct{ s *Store }

func (r cateringRepo) CreateWithRoot(_ context.Context, c *catering.Catering, root *group.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.caterings[c.ID] = cloneCatering(c)
	r.s.groups[root.ID] = cloneGroup(root)
	return nil
}

func (r cateringRepo) GetByID(_ context.Context, id uuid.UUID) (*catering.Catering, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.caterings[id]
	if !ok {
		return nil, idb.ErrCateringNotFound
	}
	return cloneCatering(c), nil
}

func (r cateringRepo) Update(_ context.Context, c *catering.Catering) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.caterings[c.ID]; !ok {
		return idb.ErrCateringNotFound
	}
	r.s.caterings[c.ID] = cloneCatering(c)
	return nil
}

func (r cateringRepo) ListActive(_ context.Context) ([]*catering.Catering, error) {
	return r.list(false)
}

func (r cateringRepo) ListAll(_ context.Context) ([]*catering.Catering, error) {
	return r.list(true)
}

func (r cateringRepo) list(includeArchived bool) ([]*catering.Catering, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*catering.Catering, 0, len(r.s.caterings))
	for _, c := range r.s.caterings {
		if !includeArchived && c.Archived {
			continue
		}
		out = append(out, cloneCatering(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- group.Repository ---

type groupRepo struct{ s *Store }

func (r groupRepo) CreateGroup(_ context.Context, g *group.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.groups[g.ID] = cloneGroup(g)
	return nil
}

func (r groupRepo) GetGroup(_ context.Context, id uuid.UUID) (*group.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, idb.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r groupRepo) UpdateGroup(_ context.Context, g *group.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; !ok {
		return idb.ErrGroupNotFound
	}
	r.s.groups[g.ID] = cloneGroup(g)
	return nil
}

func (r groupRepo) ListGroupsByCatering(_ context.Context, cateringID uuid.UUID) ([]*group.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*group.Group, 0)
	for _, g := range r.s.groups {
		if g.CateringID == cateringID {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r groupRepo) CreateStudent(_ context.Context, st *group.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.students[st.ID] = cloneStudent(st)
	return nil
}

func (r groupRepo) GetStudent(_ context.Context, id uuid.UUID) (*group.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.students[id]
	if !ok {
		return nil, idb.ErrStudentNotFound
	}
	return cloneStudent(st), nil
}

func (r groupRepo) UpdateStudent(_ context.Context, st *group.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[st.ID]; !ok {
		return idb.ErrStudentNotFound
	}
	r.s.students[st.ID] = cloneStudent(st)
	return nil
}

func (r groupRepo) ListEnrolled(_ context.Context, cateringID uuid.UUID) ([]*group.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.enrolledLocked(cateringID), nil
}

func (r groupRepo) ListByGuardian(_ context.Context, guardian string) ([]*group.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*group.Student, 0)
	for _, st := range r.s.students {
		for _, g := range st.Guardians {
			if strings.EqualFold(g, guardian) {
				out = append(out, cloneStudent(st))
				break
			}
		}
	}
	sortStudents(out)
	return out, nil
}

func (s *Store) enrolledLocked(cateringID uuid.UUID) []*group.Student {
	out := make([]*group.Student, 0)
	for _, st := range s.students {
		if st.CateringID == cateringID {
			out = append(out, cloneStudent(st))
		}
	}
	sortStudents(out)
	return out
}

// --- attendance.Repository + attendance.SnapshotReader ---

type attendanceRepo struct{ s *Store }

func (r attendanceRepo) Upsert(_ context.Context, rec *attendance.CancellationRecord) error {
	// Serialize writers of the same key; the striped lock is held across
	// the whole write so same-key upserts never interleave.
	stripe := &r.s.keyLocks[stripeFor(rec.Key())]
	stripe.Lock()
	defer stripe.Unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *rec
	r.s.records[rec.Key()] = &clone
	return nil
}

func (r attendanceRepo) Get(_ context.Context, key attendance.Key) (*attendance.CancellationRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[key]
	if !ok {
		return nil, idb.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r attendanceRepo) ListByCateringRange(_ context.Context, cateringID uuid.UUID, from, to time.Time) ([]*attendance.CancellationRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.recordsLocked(cateringID, from, to), nil
}

// MonthSnapshot reads enrollment and the ledger under a single read lock.
func (r attendanceRepo) MonthSnapshot(_ context.Context, cateringID uuid.UUID, from, to time.Time) (*attendance.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return &attendance.Snapshot{
		Students: r.s.enrolledLocked(cateringID),
		Records:  r.s.recordsLocked(cateringID, from, to),
	}, nil
}

func (s *Store) recordsLocked(cateringID uuid.UUID, from, to time.Time) []*attendance.CancellationRecord {
	out := make([]*attendance.CancellationRecord, 0)
	for _, rec := range s.records {
		if rec.CateringID != cateringID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// --- message.Repository ---

type messageRepo struct{ s *Store }

func (r messageRepo) Create(_ context.Context, m *message.ReceivedMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *m
	r.s.messages[m.ID] = &clone
	return nil
}

func (r messageRepo) GetByID(_ context.Context, id uuid.UUID) (*message.ReceivedMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, idb.ErrMessageNotFound
	}
	clone := *m
	return &clone, nil
}

func (r messageRepo) ListUnprocessed(_ context.Context, limit int) ([]*message.ReceivedMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*message.ReceivedMessage, 0)
	for _, m := range r.s.messages {
		if !m.Processed {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArrivedAt.Before(out[j].ArrivedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r messageRepo) MarkProcessed(_ context.Context, id uuid.UUID, reply string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return idb.ErrMessageNotFound
	}
	m.Processed = true
	m.Reply = reply
	return nil
}

// --- helpers ---

func stripeFor(key attendance.Key) uint32 {
	h := fnv.New32a()
	h.Write(key.StudentID[:])
	h.Write(key.CateringID[:])
	h.Write([]byte(key.Date.Format("2006-01-02")))
	return h.Sum32() % keyStripes
}

func cloneCatering(c *catering.Catering) *catering.Catering {
	clone := *c
	clone.Meals = append([]string(nil), c.Meals...)
	if c.Cutoff != nil {
		cutoff := *c.Cutoff
		clone.Cutoff = &cutoff
	}
	return &clone
}

func cloneGroup(g *group.Group) *group.Group {
	clone := *g
	if g.ParentID != nil {
		id := *g.ParentID
		clone.ParentID = &id
	}
	return &clone
}

func cloneStudent(st *group.Student) *group.Student {
	clone := *st
	clone.Allergies = append([]string(nil), st.Allergies...)
	clone.Guardians = append([]string(nil), st.Guardians...)
	return &clone
}

func sortStudents(students []*group.Student) {
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
}
