package services

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/chantierly/visadoc/pkg/logger"
)

// CleanupScheduler purges read notifications and old system logs on a daily
// schedule.
type CleanupScheduler struct {
	cron          *cron.Cron
	notifications *NotificationService
	systemLogs    *SystemLogService
	retentionDays int
}

func NewCleanupScheduler(db *gorm.DB, retentionDays int) *CleanupScheduler {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &CleanupScheduler{
		cron:          cron.New(),
		notifications: NewNotificationService(db),
		systemLogs:    NewSystemLogService(db),
		retentionDays: retentionDays,
	}
}

// Start runs one cleanup immediately, then daily.
func (s *CleanupScheduler) Start() error {
	s.run()
	if _, err := s.cron.AddFunc("@daily", s.run); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *CleanupScheduler) Stop() {
	s.cron.Stop()
}

func (s *CleanupScheduler) run() {
	if n, err := s.notifications.CleanupRead(s.retentionDays); err != nil {
		logger.Warnf("[Cleanup] notification cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("[Cleanup] removed %d read notifications older than %d days", n, s.retentionDays)
	}

	if n, err := s.systemLogs.CleanupOld(s.retentionDays); err != nil {
		logger.Warnf("[Cleanup] system log cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("[Cleanup] removed %d system logs older than %d days", n, s.retentionDays)
	}
}
