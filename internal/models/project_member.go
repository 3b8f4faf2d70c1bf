package models

import (
	"time"

	"gorm.io/gorm"
)

// Project roles, ordered from least to most privileged.
const (
	MemberViewer = "viewer"
	MemberMember = "member"
	MemberAdmin  = "admin"
	MemberOwner  = "owner"
)

// ValidMemberRole reports whether role is a known project role.
func ValidMemberRole(role string) bool {
	switch role {
	case MemberViewer, MemberMember, MemberAdmin, MemberOwner:
		return true
	default:
		return false
	}
}

// ProjectMember represents a user's membership and role within a project.
type ProjectMember struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string         `gorm:"size:50;default:viewer" json:"role"` // viewer, member, admin, owner
	Version   int64          `gorm:"default:0" json:"-"`                 // optimistic concurrency
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }
