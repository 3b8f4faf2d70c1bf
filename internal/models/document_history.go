package models

import "time"

// History actions written by the workflow engine.
const (
	HistorySubmitted     = "submitted"
	HistoryReviewStarted = "review_started"
	HistoryObservations  = "observations"
	HistoryRevised       = "revised"
	HistoryValidated     = "validated"
	HistoryRejected      = "rejected"
	HistoryDeleted       = "deleted"
)

// DocumentHistory is an append-only record of workflow actions on a document.
// Rows are never updated or deleted while the document exists.
type DocumentHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"index;not null" json:"document_id"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
	ActorRole   string    `gorm:"size:50" json:"actor_role"` // global role at the time of the action
	Comment     string    `gorm:"type:text" json:"comment"`
	PerformedAt time.Time `gorm:"index" json:"performed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (DocumentHistory) TableName() string { return "document_histories" }
