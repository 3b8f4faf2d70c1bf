package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chantierly/visadoc/internal/models"
	"github.com/chantierly/visadoc/internal/services"
)

// HealthHandler provides enhanced health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Documents still inside the review pipeline.
	var inReview int64
	models.GetDB().Model(&models.Document{}).
		Where("status IN ?", []string{models.DocSubmitted, models.DocUnderReview, models.DocObservations, models.DocRevised}).
		Count(&inReview)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "visadoc",
		"components": gin.H{
			"database":            dbStatus,
			"queue_mode":          queueMode,
			"documents_in_review": inReview,
		},
	})
}
