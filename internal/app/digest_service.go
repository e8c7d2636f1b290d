package app

import (
	"context"
	"fmt"
	"strings"

	"catering_attendance_service/internal/domain/catering"
	domainTelegram "catering_attendance_service/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// DigestService composes the kitchen's daily headcount digest and pushes
// it to the configured chat.
type DigestService struct {
	cateringRepo   catering.Repository
	attendance     *AttendanceService
	telegramClient domainTelegram.Client
	clock          Clock
	logger         *logrus.Entry
	kitchenChatID  int64
}

func NewDigestService(
	cr catering.Repository,
	as *AttendanceService,
	tc domainTelegram.Client,
	clock Clock,
	logger *logrus.Entry,
	kitchenChatID int64,
) *DigestService {
	return &DigestService{
		cateringRepo:   cr,
		attendance:     as,
		telegramClient: tc,
		clock:          clock,
		logger:         logger,
		kitchenChatID:  kitchenChatID,
	}
}

// BuildDigest renders today's expected counts per meal for every catering
// with an active service day.
func (s *DigestService) BuildDigest(ctx context.Context) (string, error) {
	today := catering.DateOf(s.clock.Now())

	caterings, err := s.cateringRepo.ListActive(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list caterings: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Posiłki na %s:", today.Format("2006-01-02"))

	served := 0
	for _, c := range caterings {
		if !c.IsActiveDay(today) {
			continue
		}
		day, err := s.attendance.GetDayCounts(ctx, c.ID, today)
		if err != nil {
			return "", fmt.Errorf("failed to compute counts for catering %s: %w", c.ID, err)
		}
		served++

		fmt.Fprintf(&b, "\n\n%s:", c.Name)
		for _, meal := range c.Meals {
			fmt.Fprintf(&b, "\n  %s: %d", meal, day.Counts[meal])
		}
	}

	if served == 0 {
		b.WriteString("\nBrak aktywnych cateringów")
	}
	return b.String(), nil
}

// SendDailyDigest builds today's digest and sends it to the kitchen chat.
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	digest, err := s.BuildDigest(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build kitchen digest")
		return err
	}

	if err := s.telegramClient.SendMessage(s.kitchenChatID, digest, nil); err != nil {
		s.logger.WithError(err).Error("Failed to send kitchen digest")
		return fmt.Errorf("failed to send kitchen digest: %w", err)
	}
	s.logger.Info("Kitchen digest sent")
	return nil
}
