package models

import "time"

// Notification types.
const (
	NotifDocumentSubmitted = "document_submitted"
	NotifReviewStarted     = "review_started"
	NotifObservations      = "observations"
	NotifDocumentRevised   = "document_revised"
	NotifDocumentApproved  = "document_approved"
	NotifDocumentRejected  = "document_rejected"
	NotifMembershipChanged = "membership_changed"
	NotifInvitation        = "invitation"
)

// Notification is an inbox entry for a user. IsRead only ever goes
// false → true. RelatedID is a weak reference to a document or project
// and may dangle after the target is deleted.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:50;index" json:"type"`
	Title     string    `gorm:"size:200" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	RelatedID uint      `json:"related_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
