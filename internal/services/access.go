package services

import (
	"errors"
	"fmt"

	"github.com/chantierly/visadoc/internal/models"
	"gorm.io/gorm"
)

// AccessLevel is the resolved permission tier of a user within one project.
// Levels are totally ordered: viewer < member < admin < owner.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessViewer
	AccessMember
	AccessAdmin
	AccessOwner
)

// Required access for an operation. The mapping to accepted levels is a
// design constant, not configurable per project: read accepts every level,
// write accepts member and above, admin accepts admin and owner.
const (
	RequireRead  = AccessViewer
	RequireWrite = AccessMember
	RequireAdmin = AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessViewer:
		return models.MemberViewer
	case AccessMember:
		return models.MemberMember
	case AccessAdmin:
		return models.MemberAdmin
	case AccessOwner:
		return models.MemberOwner
	default:
		return "none"
	}
}

// levelForRole maps a project role to its ordinal access level.
func levelForRole(role string) AccessLevel {
	switch role {
	case models.MemberViewer:
		return AccessViewer
	case models.MemberMember:
		return AccessMember
	case models.MemberAdmin:
		return AccessAdmin
	case models.MemberOwner:
		return AccessOwner
	default:
		return AccessNone
	}
}

// AccessService resolves callers into per-project access levels and manages
// project memberships. Resolution is a pure read of current member state.
type AccessService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewAccessService(db *gorm.DB, notifier *NotificationService) *AccessService {
	return &AccessService{db: db, notifier: notifier}
}

// ResolveAccess returns the caller's access level on a project, or
// ErrNotAMember when the caller has no membership row.
func (s *AccessService) ResolveAccess(userID, projectID uint) (AccessLevel, error) {
	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccessNone, ErrNotAMember
		}
		return AccessNone, err
	}
	return levelForRole(member.Role), nil
}

// CheckAccess verifies the caller holds at least the required level on the
// project. ErrNotAMember and ErrDenied both mean the operation must not
// proceed.
func (s *AccessService) CheckAccess(userID, projectID uint, required AccessLevel) error {
	level, err := s.ResolveAccess(userID, projectID)
	if err != nil {
		return err
	}
	if level < required {
		return ErrDenied
	}
	return nil
}

// ListMembers returns all members of a project with user info. Requires read
// access.
func (s *AccessService) ListMembers(actorID, projectID uint) ([]models.ProjectMember, error) {
	if err := s.CheckAccess(actorID, projectID, RequireRead); err != nil {
		return nil, err
	}
	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a user to a project. The actor must hold admin access or
// above. The owner role can only be granted at project creation.
func (s *AccessService) AddMember(actorID, projectID, userID uint, role string) (*models.ProjectMember, error) {
	if !models.ValidMemberRole(role) || role == models.MemberOwner {
		return nil, ErrInvalidRole
	}
	if err := s.CheckAccess(actorID, projectID, RequireAdmin); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, ErrNotFound
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Access is re-checked at write time; a stale admin check must not
		// let a demoted actor through.
		if err := s.checkAccessTx(tx, actorID, projectID, RequireAdmin); err != nil {
			return err
		}
		var existing models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&existing).Error; err == nil {
			return ErrAlreadyMember
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]uint{userID}, models.NotifMembershipChanged,
		"Added to project "+project.Code,
		fmt.Sprintf("You were added to project %s as %s", project.Name, role),
		projectID)

	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

// UpdateMemberRole changes a member's project role. The actor must hold admin
// access or above. The sole owner cannot be demoted, and ownership cannot be
// granted through this operation.
func (s *AccessService) UpdateMemberRole(actorID, projectID, userID uint, role string) (*models.ProjectMember, error) {
	if !models.ValidMemberRole(role) || role == models.MemberOwner {
		return nil, ErrInvalidRole
	}
	if err := s.CheckAccess(actorID, projectID, RequireAdmin); err != nil {
		return nil, err
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, ErrNotFound
	}
	if member.Role == models.MemberOwner {
		return nil, ErrSoleOwnerProtected
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkAccessTx(tx, actorID, projectID, RequireAdmin); err != nil {
			return err
		}
		res := tx.Model(&models.ProjectMember{}).
			Where("id = ? AND version = ?", member.ID, member.Version).
			Updates(map[string]interface{}{"role": role, "version": member.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]uint{userID}, models.NotifMembershipChanged,
		"Project role changed",
		fmt.Sprintf("Your role on project %d is now %s", projectID, role),
		projectID)

	member.Role = role
	member.Version++
	return &member, nil
}

// RemoveMember removes a user from a project. The actor must hold admin
// access or above; the owner can never be removed (ownership transfer is not
// supported).
func (s *AccessService) RemoveMember(actorID, projectID, userID uint) error {
	if err := s.CheckAccess(actorID, projectID, RequireAdmin); err != nil {
		return err
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return ErrNotFound
	}
	if member.Role == models.MemberOwner {
		return ErrSoleOwnerProtected
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkAccessTx(tx, actorID, projectID, RequireAdmin); err != nil {
			return err
		}
		res := tx.Where("id = ? AND version = ?", member.ID, member.Version).
			Delete(&models.ProjectMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify([]uint{userID}, models.NotifMembershipChanged,
		"Removed from project",
		fmt.Sprintf("You were removed from project %d", projectID),
		projectID)
	return nil
}

func (s *AccessService) checkAccessTx(tx *gorm.DB, userID, projectID uint, required AccessLevel) error {
	var member models.ProjectMember
	err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAMember
		}
		return err
	}
	if levelForRole(member.Role) < required {
		return ErrDenied
	}
	return nil
}
