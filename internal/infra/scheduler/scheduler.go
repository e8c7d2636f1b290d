package scheduler

import (
	"context"
	"time"

	"catering_attendance_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AttendanceScheduler runs the two recurring jobs: polling stored guardian
// messages and pushing the daily kitchen digest.
type AttendanceScheduler struct {
	cronEngine      *cron.Cron
	digestService   *app.DigestService
	messageService  *app.MessageService
	logger          *logrus.Entry
	cronSpecDigest  string
	cronSpecMsgPoll string
}

func NewAttendanceScheduler(
	digestService *app.DigestService,
	messageService *app.MessageService,
	logger *logrus.Entry,
	cronSpecDigest string, // e.g. "0 6 * * *" (06:00 daily)
	cronSpecMsgPoll string, // e.g. "*/1 * * * *" (every minute)
) *AttendanceScheduler {
	return &AttendanceScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		digestService:   digestService,
		messageService:  messageService,
		logger:          logger,
		cronSpecDigest:  cronSpecDigest,
		cronSpecMsgPoll: cronSpecMsgPoll,
	}
}

func (s *AttendanceScheduler) Start() {
	s.logger.Info("Starting attendance scheduler")

	if s.digestService != nil {
		_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
			s.logger.Info("Cron job triggered for daily kitchen digest")
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := s.digestService.SendDailyDigest(ctx); err != nil {
				s.logger.WithError(err).Error("Daily digest job failed")
			}
		})
		if err != nil {
			s.logger.WithError(err).Fatal("Could not add daily digest cron job")
		}
	}

	_, err := s.cronEngine.AddFunc(s.cronSpecMsgPoll, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.messageService.ProcessPending(ctx); err != nil {
			s.logger.WithError(err).Error("Guardian message poll failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add message poll cron job")
	}

	s.cronEngine.Start()
	s.logger.Info("Attendance scheduler started with jobs")
}

func (s *AttendanceScheduler) Stop() {
	s.logger.Info("Stopping attendance scheduler")
	ctx := s.cronEngine.Stop() // Stops new job runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Attendance scheduler gracefully stopped")
}
