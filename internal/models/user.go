package models

import (
	"time"

	"gorm.io/gorm"
)

// Global roles describe a user's profession, independent of any project.
const (
	RoleArchitect  = "architect"
	RoleBCT        = "bct" // bureau de contrôle technique
	RoleBET        = "bet" // bureau d'études techniques
	RoleContractor = "contractor"
	RoleAdmin      = "admin"
)

// ValidGlobalRole reports whether role is one of the known professions.
func ValidGlobalRole(role string) bool {
	switch role {
	case RoleArchitect, RoleBCT, RoleBET, RoleContractor, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Role      string         `gorm:"size:50;default:contractor" json:"role"` // architect, bct, bet, contractor, admin
	CompanyID *uint          `json:"company_id"`
	Company   *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
