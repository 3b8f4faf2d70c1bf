package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chantierly/visadoc/internal/models"
	"github.com/chantierly/visadoc/pkg/logger"
	"gorm.io/gorm"
)

// Workflow actions.
const (
	ActionSubmit         = "submit"
	ActionStartReview    = "start_review"
	ActionRequestChanges = "observations"
	ActionRevise         = "revise"
	ActionApprove        = "approve"
	ActionReject         = "reject"
)

// Who may trigger a transition.
type actorKind int

const (
	actorAuthor   actorKind = iota // the document's submitter
	actorReviewer                  // any user whose global role is a recipient
)

// Who gets notified once the transition committed.
type notifyKind int

const (
	notifyRecipients notifyKind = iota // every user holding a recipient role
	notifyAuthor
)

type transitionRule struct {
	target         string
	actor          actorKind
	requireComment bool
	history        string
	notify         notifyKind
}

// transitions is the complete visa state machine. Any (status, action) pair
// absent from this table fails with ErrInvalidTransition. approved and
// rejected have no outgoing edges.
var transitions = map[string]map[string]transitionRule{
	models.DocDraft: {
		ActionSubmit: {target: models.DocSubmitted, actor: actorAuthor,
			history: models.HistorySubmitted, notify: notifyRecipients},
	},
	models.DocSubmitted: {
		ActionStartReview: {target: models.DocUnderReview, actor: actorReviewer,
			history: models.HistoryReviewStarted, notify: notifyAuthor},
	},
	models.DocUnderReview: {
		ActionRequestChanges: {target: models.DocObservations, actor: actorReviewer,
			requireComment: true, history: models.HistoryObservations, notify: notifyAuthor},
		ActionApprove: {target: models.DocApproved, actor: actorReviewer,
			history: models.HistoryValidated, notify: notifyAuthor},
		ActionReject: {target: models.DocRejected, actor: actorReviewer,
			requireComment: true, history: models.HistoryRejected, notify: notifyAuthor},
	},
	models.DocObservations: {
		ActionRevise: {target: models.DocRevised, actor: actorAuthor,
			history: models.HistoryRevised, notify: notifyRecipients},
	},
	models.DocRevised: {
		// Re-entering review follows the same rule as submitted → under_review.
		ActionStartReview: {target: models.DocUnderReview, actor: actorReviewer,
			history: models.HistoryReviewStarted, notify: notifyAuthor},
	},
}

// WorkflowService owns the document visa state machine. Every transition is a
// single atomic read-modify-write guarded by the document's version column;
// history rows commit in the same transaction, notifications fan out only
// after the commit.
type WorkflowService struct {
	db       *gorm.DB
	access   *AccessService
	notifier *NotificationService
}

func NewWorkflowService(db *gorm.DB, access *AccessService, notifier *NotificationService) *WorkflowService {
	return &WorkflowService{db: db, access: access, notifier: notifier}
}

type CreateDocumentRequest struct {
	ProjectID   uint     `json:"project_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Type        string   `json:"type"`
	Recipients  []string `json:"recipients"`
	BlobKey     string   `json:"blob_key"`
	ExternalURL string   `json:"external_url"`
}

// Create creates a new document in draft status. The author must hold write
// access on the project.
func (s *WorkflowService) Create(req *CreateDocumentRequest, authorID uint) (*models.Document, error) {
	if err := s.access.CheckAccess(authorID, req.ProjectID, RequireWrite); err != nil {
		return nil, err
	}
	for _, r := range req.Recipients {
		if !models.ValidGlobalRole(r) {
			return nil, ErrInvalidRole
		}
	}

	doc := models.Document{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Type:        req.Type,
		Status:      models.DocDraft,
		SubmittedBy: authorID,
		Recipients:  strings.Join(req.Recipients, ","),
		BlobKey:     req.BlobKey,
		ExternalURL: req.ExternalURL,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByID returns a document. The caller needs read access on its project.
func (s *WorkflowService) GetByID(actorID, docID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.access.CheckAccess(actorID, doc.ProjectID, RequireRead); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByProject returns a project's documents, newest first.
func (s *WorkflowService) ListByProject(actorID, projectID uint, status string) ([]models.Document, error) {
	if err := s.access.CheckAccess(actorID, projectID, RequireRead); err != nil {
		return nil, err
	}
	query := s.db.Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var docs []models.Document
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Transition applies one workflow action to a document. It verifies the
// caller's access level and role eligibility, checks the transition table,
// then writes the new status plus a history row atomically. A version
// mismatch on the write yields ErrConcurrentModification and commits nothing.
func (s *WorkflowService) Transition(docID, actorID uint, action, comment string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Every transition requires at least write access; a viewer is denied
	// regardless of global role.
	if err := s.access.CheckAccess(actorID, doc.ProjectID, RequireWrite); err != nil {
		return nil, err
	}

	rule, ok := transitions[doc.Status][action]
	if !ok {
		return nil, ErrInvalidTransition
	}

	var actor models.User
	if err := s.db.First(&actor, actorID).Error; err != nil {
		return nil, ErrNotFound
	}

	switch rule.actor {
	case actorAuthor:
		if doc.SubmittedBy != actorID {
			return nil, ErrDenied
		}
	case actorReviewer:
		if !doc.HasRecipientRole(actor.Role) {
			return nil, ErrRoleMismatch
		}
	}

	comment = strings.TrimSpace(comment)
	if rule.requireComment && comment == "" {
		return nil, ErrCommentRequired
	}
	if action == ActionSubmit && len(doc.RecipientRoles()) == 0 {
		return nil, ErrNoRecipients
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Document{}).
			Where("id = ? AND version = ?", doc.ID, doc.Version).
			Updates(map[string]interface{}{
				"status":  rule.target,
				"version": doc.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The row changed (or vanished) between read and write.
			var check models.Document
			if err := tx.First(&check, doc.ID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return ErrConcurrentModification
		}
		history := models.DocumentHistory{
			DocumentID:  doc.ID,
			Action:      rule.history,
			PerformedBy: actorID,
			ActorRole:   actor.Role,
			Comment:     comment,
			PerformedAt: now,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}

	doc.Status = rule.target
	doc.Version++
	s.fanOut(&doc, &actor, rule, comment)
	return &doc, nil
}

// fanOut dispatches the notifications for a committed transition.
// Best-effort: a failed notification never unwinds the transition.
func (s *WorkflowService) fanOut(doc *models.Document, actor *models.User, rule transitionRule, comment string) {
	title := fmt.Sprintf("Document %q: %s", doc.Title, rule.history)
	message := fmt.Sprintf("%s performed %s on document %q", actor.Username, rule.history, doc.Title)
	if comment != "" {
		message += "\n\n" + comment
	}

	switch rule.notify {
	case notifyAuthor:
		s.notifier.Notify([]uint{doc.SubmittedBy}, notifTypeForHistory(rule.history), title, message, doc.ID)
	case notifyRecipients:
		userIDs, err := s.usersWithRoles(doc.RecipientRoles())
		if err != nil {
			logger.Warn().Err(err).Uint("document_id", doc.ID).Msg("recipient lookup failed, notifications skipped")
			return
		}
		s.notifier.Notify(userIDs, notifTypeForHistory(rule.history), title, message, doc.ID)
	}
}

func notifTypeForHistory(history string) string {
	switch history {
	case models.HistorySubmitted:
		return models.NotifDocumentSubmitted
	case models.HistoryReviewStarted:
		return models.NotifReviewStarted
	case models.HistoryObservations:
		return models.NotifObservations
	case models.HistoryRevised:
		return models.NotifDocumentRevised
	case models.HistoryValidated:
		return models.NotifDocumentApproved
	case models.HistoryRejected:
		return models.NotifDocumentRejected
	default:
		return history
	}
}

// usersWithRoles resolves all active users holding any of the given global
// roles.
func (s *WorkflowService) usersWithRoles(roles []string) ([]uint, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var ids []uint
	err := s.db.Model(&models.User{}).
		Where("role IN ? AND is_active = ?", roles, true).
		Pluck("id", &ids).Error
	return ids, err
}

// History returns a document's audit trail ordered by performed_at ascending,
// ties broken by insertion order. The caller needs read access.
func (s *WorkflowService) History(actorID, docID uint) ([]models.DocumentHistory, error) {
	var doc models.Document
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.access.CheckAccess(actorID, doc.ProjectID, RequireRead); err != nil {
		return nil, err
	}

	var entries []models.DocumentHistory
	if err := s.db.Where("document_id = ?", docID).
		Order("performed_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a document and its history. Requires admin access on the
// project, is allowed in any status, and is irreversible; the deletion is
// recorded in the system log before the rows go away.
func (s *WorkflowService) Delete(actorID, docID uint) error {
	var doc models.Document
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.access.CheckAccess(actorID, doc.ProjectID, RequireAdmin); err != nil {
		return err
	}

	LogWarning("Documents", "Delete",
		fmt.Sprintf("document %d (%s) deleted in status %s", doc.ID, doc.Title, doc.Status),
		&actorID, &doc.ProjectID, "", "", map[string]interface{}{"blob_key": doc.BlobKey})

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.access.checkAccessTx(tx, actorID, doc.ProjectID, RequireAdmin); err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).
			Delete(&models.DocumentHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, doc.ID).Error
	})
}
