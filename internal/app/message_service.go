package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"
	"catering_attendance_service/internal/domain/message"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const messageBatchSize = 50

// MessageService turns guardians' free-text messages into ledger writes.
// Each unprocessed message is tokenized against the guardian's students
// and their meals, folded into a cancellation request, applied day by day
// and answered with a summary reply.
type MessageService struct {
	messageRepo  message.Repository
	groupRepo    group.Repository
	cateringRepo catering.Repository
	cancellation *CancellationService
	logger       *logrus.Entry
}

func NewMessageService(
	mr message.Repository,
	gr group.Repository,
	cr catering.Repository,
	cs *CancellationService,
	logger *logrus.Entry,
) *MessageService {
	return &MessageService{
		messageRepo:  mr,
		groupRepo:    gr,
		cateringRepo: cr,
		cancellation: cs,
		logger:       logger,
	}
}

// ProcessPending handles one batch of unprocessed guardian messages. A
// message that cannot be parsed is still marked processed, with an
// explanatory reply; only infrastructure failures abort the batch.
func (s *MessageService) ProcessPending(ctx context.Context) error {
	msgs, err := s.messageRepo.ListUnprocessed(ctx, messageBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list unprocessed messages: %w", err)
	}

	for _, m := range msgs {
		logCtx := s.logger.WithField("message_id", m.ID).WithField("guardian", m.Guardian)

		reply, err := s.processOne(ctx, m)
		if err != nil {
			logCtx.WithError(err).Error("Message processing failed")
			return err
		}

		if err := s.messageRepo.MarkProcessed(ctx, m.ID, reply); err != nil {
			return fmt.Errorf("failed to mark message %s processed: %w", m.ID, err)
		}
		logCtx.WithField("reply", reply).Info("Guardian message processed")
	}
	return nil
}

func (s *MessageService) processOne(ctx context.Context, m *message.ReceivedMessage) (string, error) {
	students, err := s.groupRepo.ListByGuardian(ctx, m.Guardian)
	if err != nil {
		return "", fmt.Errorf("failed to list students for guardian: %w", err)
	}
	if len(students) == 0 {
		return replyUnknownSender, nil
	}

	vocab, caterings, err := s.buildVocabulary(ctx, students)
	if err != nil {
		return "", err
	}

	tokens := message.Tokenize(m.Content, vocab, m.ArrivedAt)
	req, err := message.BuildRequest(tokens)
	if err != nil {
		var reqErr *message.RequestError
		if errors.As(err, &reqErr) {
			return replyForRequestError(reqErr), nil
		}
		return "", err
	}

	results := s.applyRequest(ctx, req, students, caterings)
	return replyForResults(results), nil
}

// buildVocabulary collects the guardian's students and, via their
// caterings, the meal names they may refer to.
func (s *MessageService) buildVocabulary(ctx context.Context, students []*group.Student) (message.Vocabulary, map[uuid.UUID]*catering.Catering, error) {
	vocab := message.Vocabulary{}
	caterings := make(map[uuid.UUID]*catering.Catering)
	mealSeen := make(map[string]bool)

	for _, st := range students {
		vocab.Students = append(vocab.Students, message.VocabStudent{ID: st.ID, Name: st.FirstName})

		c, ok := caterings[st.CateringID]
		if !ok {
			var err error
			c, err = s.cateringRepo.GetByID(ctx, st.CateringID)
			if err != nil {
				return vocab, nil, fmt.Errorf("failed to load catering for student %s: %w", st.ID, err)
			}
			caterings[st.CateringID] = c
		}
		for _, meal := range c.Meals {
			key := strings.ToLower(meal)
			if !mealSeen[key] {
				mealSeen[key] = true
				vocab.Meals = append(vocab.Meals, meal)
			}
		}
	}
	return vocab, caterings, nil
}

type cancellationOutcome struct {
	student *group.Student
	days    int
}

// applyRequest writes one cancellation per selected student per day in the
// requested range, clamped to each student's catering validity. Inactive
// days and past-cutoff days are skipped rather than failing the message.
func (s *MessageService) applyRequest(ctx context.Context, req *message.CancellationRequest, students []*group.Student, caterings map[uuid.UUID]*catering.Catering) []cancellationOutcome {
	// A message naming no student from a single-student guardian means
	// that student.
	defaultStudent := len(req.StudentIDs) == 0 && len(students) == 1

	var outcomes []cancellationOutcome
	for _, st := range students {
		if !defaultStudent && !containsID(req.StudentIDs, st.ID) {
			continue
		}
		c := caterings[st.CateringID]
		if c == nil {
			continue
		}

		since, until := clampRange(req.Since, req.Until, c.Start, c.End)
		days := 0
		for day := since; !day.After(until); day = day.AddDate(0, 0, 1) {
			err := s.cancellation.SetCancellationOn(ctx, st.ID, st.CateringID, day, true)
			switch {
			case err == nil:
				days++
			case errors.Is(err, attendance.ErrInactiveDate),
				errors.Is(err, attendance.ErrPastCutoff),
				errors.Is(err, attendance.ErrNoCutoffConfigured):
				// Not cancellable; the summary simply omits the day.
			default:
				s.logger.WithError(err).WithField("student_id", st.ID).Warn("Cancellation write failed")
			}
		}
		outcomes = append(outcomes, cancellationOutcome{student: st, days: days})
	}
	return outcomes
}

func clampRange(since, until, lo, hi time.Time) (time.Time, time.Time) {
	if since.Before(lo) {
		since = lo
	}
	if until.After(hi) {
		until = hi
	}
	return since, until
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Outbound reply templates. These mirror the wording the service has
// always answered guardians with; localization beyond that is the
// transport's concern.
const (
	replyUnknownSender = "Nie rozpoznano nadawcy"
	replyNothing       = "Nie odwołano żadnej obecności"
)

func replyForRequestError(err *message.RequestError) string {
	switch err.Reason {
	case message.ReasonUnknownTerm:
		return fmt.Sprintf("Nie rozpoznano słowa: %s", err.Term)
	case message.ReasonAmbiguousTerm:
		return fmt.Sprintf("Niejednoznaczne słowo: %s", err.Term)
	case message.ReasonNoDateSpecified:
		return "Nie podano daty"
	case message.ReasonInvalidTimeRange:
		return "Nieprawidłowy zakres dat"
	case message.ReasonTooManyDates:
		return "Podano zbyt wiele dat"
	default:
		return replyNothing
	}
}

func replyForResults(outcomes []cancellationOutcome) string {
	total := 0
	for _, o := range outcomes {
		total += o.days
	}
	if total == 0 {
		return replyNothing
	}

	var b strings.Builder
	b.WriteString("Odwołano:")
	for _, o := range outcomes {
		if o.days == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %d", o.student.FullName(), o.days)
	}
	return b.String()
}
