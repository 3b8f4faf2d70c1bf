package models

import (
	"time"

	"gorm.io/gorm"
)

// Company groups professionals (architects, engineering offices, contractors).
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	SIRET     string         `gorm:"size:50" json:"siret"`
	City      string         `gorm:"size:100" json:"city"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string { return "companies" }
