package main

import (
	"github.com/chantierly/visadoc/internal/config"
	"github.com/chantierly/visadoc/internal/handlers"
	"github.com/chantierly/visadoc/internal/models"
	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/internal/storage"
	"github.com/chantierly/visadoc/internal/utils"
	"github.com/chantierly/visadoc/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg           *config.Config
	blobs         storage.Store
	access        *services.AccessService
	notifications *services.NotificationService
	taskQueue     services.TaskQueue
	worker        *services.Worker
	cleanup       *services.CleanupScheduler
	authHandler   *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, blob store,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	services.InitSystemLogger(db)

	blobs, err := storage.NewDiskStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatalf("Failed to initialize blob store: %v", err)
	}

	notifications := services.NewNotificationService(db)
	access := services.NewAccessService(db, notifications)

	// Outbound relay: notifications are mirrored to a webhook through the
	// task queue. Redis makes delivery async; otherwise it runs in-process.
	relay := services.NewRelayService(cfg.Notifications.RelayWebhook)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(relay.Process)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(relay.Process)
			worker.Start()
		}
	}
	if relay.Enabled() {
		notifications.SetRelayQueue(taskQueue)
	}

	cleanup := services.NewCleanupScheduler(db, cfg.Notifications.RetentionDays)
	if err := cleanup.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cleanup scheduler")
	}

	if err := services.NewAuthService(db, &cfg.JWT).CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:           cfg,
		blobs:         blobs,
		access:        access,
		notifications: notifications,
		taskQueue:     taskQueue,
		worker:        worker,
		cleanup:       cleanup,
		authHandler:   handlers.NewAuthHandler(db, &cfg.JWT),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.cleanup != nil {
		s.cleanup.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
