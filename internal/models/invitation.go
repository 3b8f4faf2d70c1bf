package models

import "time"

// Invitation statuses. Pending is the only non-terminal state.
const (
	InviteStatusPending   = "pending"
	InviteStatusAccepted  = "accepted"
	InviteStatusRefused   = "refused"
	InviteStatusCancelled = "cancelled"
)

// Invitation turns an external email into a project member once accepted.
// RespondedAt is stamped exactly once, on the first transition out of pending.
type Invitation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"index;not null" json:"project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email       string     `gorm:"size:255;index;not null" json:"email"`
	Role        string     `gorm:"size:50;default:viewer" json:"role"` // project role granted on accept
	Status      string     `gorm:"size:50;default:pending;index" json:"status"`
	Token       string     `gorm:"uniqueIndex;size:64" json:"-"` // secret token for accept links
	InvitedBy   uint       `gorm:"not null" json:"invited_by"`
	InvitedAt   time.Time  `json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }
