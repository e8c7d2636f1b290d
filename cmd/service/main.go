package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering_attendance_service/internal/app"
	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"
	"catering_attendance_service/internal/domain/message"
	domainTelegram "catering_attendance_service/internal/domain/telegram"
	"catering_attendance_service/internal/infra/config"
	idb "catering_attendance_service/internal/infra/database"
	"catering_attendance_service/internal/infra/database/memory"
	"catering_attendance_service/internal/infra/logger"
	"catering_attendance_service/internal/infra/scheduler"
	"catering_attendance_service/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Catering Attendance Service starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.WithField("storage_driver", cfg.StorageDriver).
		WithField("environment", cfg.Environment).
		Info("Configuration loaded")

	// Initialize storage
	var (
		cateringRepo   catering.Repository
		groupRepo      group.Repository
		attendanceRepo attendance.Repository
		snapshots      attendance.SnapshotReader
		messageRepo    message.Repository
	)
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		log.Info("Database connection established successfully")

		cateringRepo = idb.NewPostgresCateringRepository(db)
		groupRepo = idb.NewPostgresGroupRepository(db)
		ar := idb.NewPostgresAttendanceRepository(db)
		attendanceRepo = ar
		snapshots = ar
		messageRepo = idb.NewPostgresMessageRepository(db)
	case config.DriverMemory:
		store := memory.NewStore()
		cateringRepo = store.Caterings()
		groupRepo = store.Groups()
		attendanceRepo = store.Attendance()
		snapshots = store.Snapshots()
		messageRepo = store.Messages()
		log.Info("In-memory store initialized")
	}

	// Initialize services
	clock := app.SystemClock{}
	cancellationService := app.NewCancellationService(cateringRepo, groupRepo, attendanceRepo, clock)
	attendanceService := app.NewAttendanceService(cateringRepo, snapshots)
	log.Info("Core services initialized")

	messageService := app.NewMessageService(
		messageRepo, groupRepo, cateringRepo, cancellationService,
		logger.Get().WithField("component", "message_service"),
	)

	// Initialize Telegram bot and digest service
	var telegramClient domainTelegram.Client
	var bot *telebot.Bot
	if !cfg.DisableTelegramBot {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.WithError(err).Error("Telegram bot error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			log.WithError(err).Fatal("Could not create Telegram bot")
		}
		telegramClient = telegram.NewTelebotAdapter(bot)
	}

	var digestService *app.DigestService
	if telegramClient != nil {
		digestService = app.NewDigestService(
			cateringRepo, attendanceService, telegramClient, clock,
			logger.Get().WithField("component", "digest_service"),
			cfg.KitchenChatID,
		)
	}

	// Initialize scheduler
	attendanceScheduler := scheduler.NewAttendanceScheduler(
		digestService,
		messageService,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDigest,
		cfg.CronSpecMsgPoll,
	)
	attendanceScheduler.Start()

	if bot != nil && digestService != nil {
		telegram.RegisterDigestHandlers(bot, digestService, cfg.KitchenChatID,
			logger.Get().WithField("component", "telegram"))
		log.Info("Digest command handlers registered")
		go bot.Start()
	}

	log.Info("Application setup complete")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	attendanceScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	log.Info("Application shut down gracefully")
}
