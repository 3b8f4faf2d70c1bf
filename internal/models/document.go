package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Document statuses. Draft is initial; approved and rejected are terminal.
const (
	DocDraft        = "draft"
	DocSubmitted    = "submitted"
	DocUnderReview  = "under_review"
	DocObservations = "observations"
	DocRevised      = "revised"
	DocApproved     = "approved"
	DocRejected     = "rejected"
)

// Document represents a project document going through the visa workflow.
// Recipients holds the global roles required to review it, as a
// comma-separated list (e.g. "bct,bet").
type Document struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title       string         `gorm:"size:300;not null" json:"title"`
	Type        string         `gorm:"size:100" json:"type"` // plan, report, permit, ...
	Status      string         `gorm:"size:50;default:draft;index" json:"status"`
	SubmittedBy uint           `gorm:"not null" json:"submitted_by"`
	Recipients  string         `gorm:"size:200" json:"recipients"` // comma-separated global roles
	BlobKey     string         `gorm:"size:100" json:"blob_key"`
	ExternalURL string         `gorm:"size:500" json:"external_url"`
	Version     int64          `gorm:"default:0" json:"-"` // optimistic concurrency
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "documents" }

// RecipientRoles returns the recipient role list, empty entries removed.
func (d *Document) RecipientRoles() []string {
	if d.Recipients == "" {
		return nil
	}
	var roles []string
	for _, r := range strings.Split(d.Recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRecipientRole reports whether role is among the document's recipients.
func (d *Document) HasRecipientRole(role string) bool {
	for _, r := range d.RecipientRoles() {
		if r == role {
			return true
		}
	}
	return false
}
