package models

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// ValidProjectStatus reports whether status is a known project status.
func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	default:
		return false
	}
}

// Project represents a construction project
type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Address   string         `gorm:"size:500" json:"address"`
	OwnerID   uint           `gorm:"not null" json:"owner_id"`
	Status    string         `gorm:"size:50;default:active" json:"status"` // active, on_hold, completed, cancelled
	Progress  int            `gorm:"default:0" json:"progress"`            // 0-100
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
