package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chantierly/visadoc/internal/models"
)

// Invitation decisions.
const (
	DecisionAccept = "accept"
	DecisionRefuse = "refuse"
)

// InvitationService manages the lifecycle that turns an external email into a
// project member. Terminal transitions are guarded by the pending status, so
// re-invoking after the fact fails with ErrInvitationNotPending instead of
// double-applying.
type InvitationService struct {
	db       *gorm.DB
	access   *AccessService
	notifier *NotificationService
}

func NewInvitationService(db *gorm.DB, access *AccessService, notifier *NotificationService) *InvitationService {
	return &InvitationService{db: db, access: access, notifier: notifier}
}

// Invite creates a pending invitation. The inviter must hold admin access on
// the project; a second pending invitation for the same (project, email) pair
// is rejected.
func (s *InvitationService) Invite(projectID uint, email, role string, invitedBy uint) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if !models.ValidMemberRole(role) || role == models.MemberOwner {
		return nil, ErrInvalidRole
	}
	if err := s.access.CheckAccess(invitedBy, projectID, RequireAdmin); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, ErrNotFound
	}

	invitation := models.Invitation{
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Status:    models.InviteStatusPending,
		Token:     uuid.NewString(),
		InvitedBy: invitedBy,
		InvitedAt: time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Invitation
		err := tx.Where("project_id = ? AND email = ? AND status = ?",
			projectID, email, models.InviteStatusPending).First(&existing).Error
		if err == nil {
			return ErrDuplicatePendingInvitation
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&invitation).Error
	})
	if err != nil {
		return nil, err
	}

	// Notify the invitee when the email maps to an existing account.
	var invitee models.User
	if err := s.db.Where("email = ?", email).First(&invitee).Error; err == nil {
		s.notifier.Notify([]uint{invitee.ID}, models.NotifInvitation,
			"Invitation to project "+project.Code,
			fmt.Sprintf("You were invited to join project %s as %s", project.Name, role),
			projectID)
	}

	return &invitation, nil
}

// Respond records the invitee's decision. Only the account whose email the
// invitation is addressed to may respond. On accept, the responding user's
// membership row is created (or its role updated) in the same transaction
// that closes the invitation. Fails with ErrInvitationNotPending if the
// invitation already left the pending state.
func (s *InvitationService) Respond(invitationID uint, decision string, respondingUserID uint) (*models.Invitation, error) {
	if decision != DecisionAccept && decision != DecisionRefuse {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	var invitation models.Invitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var responder models.User
	if err := s.db.First(&responder, respondingUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDenied
		}
		return nil, err
	}
	if strings.ToLower(strings.TrimSpace(responder.Email)) != invitation.Email {
		return nil, ErrDenied
	}

	if invitation.Status != models.InviteStatusPending {
		return nil, ErrInvitationNotPending
	}

	newStatus := models.InviteStatusRefused
	if decision == DecisionAccept {
		newStatus = models.InviteStatusAccepted
	}
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The pending guard makes the close race-safe: the loser of two
		// concurrent responses sees zero affected rows.
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InviteStatusPending).
			Updates(map[string]interface{}{"status": newStatus, "responded_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvitationNotPending
		}

		if decision != DecisionAccept {
			return nil
		}

		var member models.ProjectMember
		err := tx.Where("project_id = ? AND user_id = ?", invitation.ProjectID, respondingUserID).
			First(&member).Error
		switch {
		case err == nil:
			if member.Role == models.MemberOwner {
				// An owner accepting an invitation keeps ownership.
				return nil
			}
			return tx.Model(&member).
				Updates(map[string]interface{}{"role": invitation.Role, "version": member.Version + 1}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.ProjectMember{
				ProjectID: invitation.ProjectID,
				UserID:    respondingUserID,
				Role:      invitation.Role,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]uint{invitation.InvitedBy}, models.NotifInvitation,
		"Invitation "+newStatus,
		fmt.Sprintf("The invitation of %s was %s", invitation.Email, newStatus),
		invitation.ProjectID)

	invitation.Status = newStatus
	invitation.RespondedAt = &now
	return &invitation, nil
}

// Cancel withdraws a pending invitation. Requires admin access on the
// project.
func (s *InvitationService) Cancel(invitationID, cancellingUserID uint) error {
	var invitation models.Invitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.access.CheckAccess(cancellingUserID, invitation.ProjectID, RequireAdmin); err != nil {
		return err
	}
	if invitation.Status != models.InviteStatusPending {
		return ErrInvitationNotPending
	}

	now := time.Now()
	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InviteStatusPending).
		Updates(map[string]interface{}{"status": models.InviteStatusCancelled, "responded_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvitationNotPending
	}
	return nil
}

// List returns a project's invitations, newest first. Requires admin access.
func (s *InvitationService) List(actorID, projectID uint) ([]models.Invitation, error) {
	if err := s.access.CheckAccess(actorID, projectID, RequireAdmin); err != nil {
		return nil, err
	}
	var invitations []models.Invitation
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListForEmail returns the pending invitations addressed to an email.
func (s *InvitationService) ListForEmail(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.Where("email = ? AND status = ?",
		strings.ToLower(strings.TrimSpace(email)), models.InviteStatusPending).
		Preload("Project").
		Order("created_at DESC").Find(&invitations).Error
	return invitations, err
}
