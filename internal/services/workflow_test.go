package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/chantierly/visadoc/internal/models"
)

func TestWorkflowFullApprovalPath(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	architect := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	reviewer := createUser(t, db, "bob", "bob@site.fr", models.RoleBCT)
	project := createProject(t, db, "CHU-01", architect.ID)
	addMember(t, db, project.ID, reviewer.ID, models.MemberMember)

	doc, err := workflow.Create(&CreateDocumentRequest{
		ProjectID:  project.ID,
		Title:      "Structural plan R+2",
		Type:       "plan",
		Recipients: []string{models.RoleBCT},
	}, architect.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Status != models.DocDraft {
		t.Fatalf("new document status = %q, expected draft", doc.Status)
	}

	doc, err = workflow.Transition(doc.ID, architect.ID, ActionSubmit, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if doc.Status != models.DocSubmitted {
		t.Errorf("after submit status = %q", doc.Status)
	}

	doc, err = workflow.Transition(doc.ID, reviewer.ID, ActionStartReview, "")
	if err != nil {
		t.Fatalf("start_review: %v", err)
	}
	if doc.Status != models.DocUnderReview {
		t.Errorf("after start_review status = %q", doc.Status)
	}

	doc, err = workflow.Transition(doc.ID, reviewer.ID, ActionApprove, "conforme")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if doc.Status != models.DocApproved {
		t.Errorf("after approve status = %q", doc.Status)
	}

	// Version must have advanced once per transition.
	var stored models.Document
	db.First(&stored, doc.ID)
	if stored.Version != 3 {
		t.Errorf("version = %d, expected 3", stored.Version)
	}

	history, err := workflow.History(architect.ID, doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	wantActions := []string{models.HistorySubmitted, models.HistoryReviewStarted, models.HistoryValidated}
	if len(history) != len(wantActions) {
		t.Fatalf("history length = %d, expected %d", len(history), len(wantActions))
	}
	for i, action := range wantActions {
		if history[i].Action != action {
			t.Errorf("history[%d].Action = %q, expected %q", i, history[i].Action, action)
		}
	}
	if history[2].ActorRole != models.RoleBCT {
		t.Errorf("approval actor role = %q, expected bct", history[2].ActorRole)
	}
	if history[2].Comment != "conforme" {
		t.Errorf("approval comment = %q", history[2].Comment)
	}
}

func TestWorkflowObservationLoop(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	reviewer := createUser(t, db, "bob", "bob@site.fr", models.RoleBET)
	project := createProject(t, db, "LOG-02", author.ID)
	addMember(t, db, project.ID, reviewer.ID, models.MemberMember)

	doc, err := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "HVAC sizing", Recipients: []string{models.RoleBET},
	}, author.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mustTransition := func(actorID uint, action, comment string) *models.Document {
		t.Helper()
		d, err := workflow.Transition(doc.ID, actorID, action, comment)
		if err != nil {
			t.Fatalf("%s: %v", action, err)
		}
		return d
	}

	mustTransition(author.ID, ActionSubmit, "")
	mustTransition(reviewer.ID, ActionStartReview, "")
	d := mustTransition(reviewer.ID, ActionRequestChanges, "flow rate on level 3 is wrong")
	if d.Status != models.DocObservations {
		t.Fatalf("after observations status = %q", d.Status)
	}

	d = mustTransition(author.ID, ActionRevise, "corrected the flow rate")
	if d.Status != models.DocRevised {
		t.Fatalf("after revise status = %q", d.Status)
	}

	// A revised document re-enters review through the same action as a
	// fresh submission.
	d = mustTransition(reviewer.ID, ActionStartReview, "")
	if d.Status != models.DocUnderReview {
		t.Fatalf("after re-review status = %q", d.Status)
	}

	d = mustTransition(reviewer.ID, ActionApprove, "")
	if d.Status != models.DocApproved {
		t.Fatalf("final status = %q", d.Status)
	}
}

func TestWorkflowInvalidTransitions(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	reviewer := createUser(t, db, "bob", "bob@site.fr", models.RoleBCT)
	project := createProject(t, db, "TRM-03", author.ID)
	addMember(t, db, project.ID, reviewer.ID, models.MemberMember)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Facade permit", Recipients: []string{models.RoleBCT},
	}, author.ID)

	// approve straight from draft
	if _, err := workflow.Transition(doc.ID, reviewer.ID, ActionApprove, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve from draft: expected ErrInvalidTransition, got %v", err)
	}

	workflow.Transition(doc.ID, author.ID, ActionSubmit, "")
	workflow.Transition(doc.ID, reviewer.ID, ActionStartReview, "")
	workflow.Transition(doc.ID, reviewer.ID, ActionApprove, "")

	// approved is terminal
	for _, action := range []string{ActionSubmit, ActionStartReview, ActionApprove, ActionReject, ActionRevise} {
		if _, err := workflow.Transition(doc.ID, reviewer.ID, action, "x"); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s on approved doc: expected ErrInvalidTransition, got %v", action, err)
		}
	}
}

func TestWorkflowCommentRequired(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	reviewer := createUser(t, db, "bob", "bob@site.fr", models.RoleBCT)
	project := createProject(t, db, "COM-04", author.ID)
	addMember(t, db, project.ID, reviewer.ID, models.MemberMember)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Slab plan", Recipients: []string{models.RoleBCT},
	}, author.ID)
	workflow.Transition(doc.ID, author.ID, ActionSubmit, "")
	workflow.Transition(doc.ID, reviewer.ID, ActionStartReview, "")

	if _, err := workflow.Transition(doc.ID, reviewer.ID, ActionRequestChanges, "   "); !errors.Is(err, ErrCommentRequired) {
		t.Errorf("observations without comment: expected ErrCommentRequired, got %v", err)
	}
	if _, err := workflow.Transition(doc.ID, reviewer.ID, ActionReject, ""); !errors.Is(err, ErrCommentRequired) {
		t.Errorf("reject without comment: expected ErrCommentRequired, got %v", err)
	}

	// The failed attempts must not have moved the document or written history.
	var stored models.Document
	db.First(&stored, doc.ID)
	if stored.Status != models.DocUnderReview {
		t.Errorf("status after failed transitions = %q", stored.Status)
	}
	var count int64
	db.Model(&models.DocumentHistory{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 2 {
		t.Errorf("history rows = %d, expected 2", count)
	}
}

func TestWorkflowActorChecks(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	colleague := createUser(t, db, "carl", "carl@site.fr", models.RoleArchitect)
	wrongRole := createUser(t, db, "dora", "dora@site.fr", models.RoleContractor)
	viewer := createUser(t, db, "eve", "eve@site.fr", models.RoleBCT)
	project := createProject(t, db, "ACT-05", author.ID)
	addMember(t, db, project.ID, colleague.ID, models.MemberMember)
	addMember(t, db, project.ID, wrongRole.ID, models.MemberMember)
	addMember(t, db, project.ID, viewer.ID, models.MemberViewer)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Roofing detail", Recipients: []string{models.RoleBCT},
	}, author.ID)

	// Only the author submits, even among members with write access.
	if _, err := workflow.Transition(doc.ID, colleague.ID, ActionSubmit, ""); !errors.Is(err, ErrDenied) {
		t.Errorf("submit by non-author: expected ErrDenied, got %v", err)
	}

	workflow.Transition(doc.ID, author.ID, ActionSubmit, "")

	// A member whose global role is not a recipient cannot review.
	if _, err := workflow.Transition(doc.ID, wrongRole.ID, ActionStartReview, ""); !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("review by wrong role: expected ErrRoleMismatch, got %v", err)
	}

	// A viewer is blocked before role eligibility even matters.
	if _, err := workflow.Transition(doc.ID, viewer.ID, ActionStartReview, ""); !errors.Is(err, ErrDenied) {
		t.Errorf("review by viewer: expected ErrDenied, got %v", err)
	}

	// A non-member gets ErrNotAMember.
	outsider := createUser(t, db, "frank", "frank@site.fr", models.RoleBCT)
	if _, err := workflow.Transition(doc.ID, outsider.ID, ActionStartReview, ""); !errors.Is(err, ErrNotAMember) {
		t.Errorf("review by outsider: expected ErrNotAMember, got %v", err)
	}
}

func TestWorkflowSubmitWithoutRecipients(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	project := createProject(t, db, "REC-06", author.ID)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Notes",
	}, author.ID)

	if _, err := workflow.Transition(doc.ID, author.ID, ActionSubmit, ""); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("submit without recipients: expected ErrNoRecipients, got %v", err)
	}
}

func TestWorkflowCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	viewer := createUser(t, db, "vera", "vera@site.fr", models.RoleBCT)
	project := createProject(t, db, "CRT-07", author.ID)
	addMember(t, db, project.ID, viewer.ID, models.MemberViewer)

	if _, err := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "x", Recipients: []string{"plumber"},
	}, author.ID); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("unknown recipient role: expected ErrInvalidRole, got %v", err)
	}

	if _, err := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "x", Recipients: []string{models.RoleBCT},
	}, viewer.ID); !errors.Is(err, ErrDenied) {
		t.Errorf("create by viewer: expected ErrDenied, got %v", err)
	}
}

func TestWorkflowTransitionNotificationsAfterCommit(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	bct1 := createUser(t, db, "bob", "bob@site.fr", models.RoleBCT)
	bct2 := createUser(t, db, "bea", "bea@site.fr", models.RoleBCT)
	inactive := createUser(t, db, "ines", "ines@site.fr", models.RoleBCT)
	db.Model(inactive).Update("is_active", false)

	project := createProject(t, db, "NTF-08", author.ID)
	addMember(t, db, project.ID, bct1.ID, models.MemberMember)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Fire safety report", Recipients: []string{models.RoleBCT},
	}, author.ID)

	if _, err := workflow.Transition(doc.ID, author.ID, ActionSubmit, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Both active bct users were notified, the inactive one was not.
	var count int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotifDocumentSubmitted).Count(&count)
	if count != 2 {
		t.Errorf("submit notifications = %d, expected 2", count)
	}
	var bct2Note models.Notification
	if err := db.Where("user_id = ?", bct2.ID).First(&bct2Note).Error; err != nil {
		t.Errorf("bct2 should have been notified: %v", err)
	}
	var inactiveNote models.Notification
	if err := db.Where("user_id = ?", inactive.ID).First(&inactiveNote).Error; err == nil {
		t.Error("inactive user should not have been notified")
	}

	// The review start notifies the author.
	workflow.Transition(doc.ID, bct1.ID, ActionStartReview, "")
	var authorNote models.Notification
	if err := db.Where("user_id = ? AND type = ?", author.ID, models.NotifReviewStarted).
		First(&authorNote).Error; err != nil {
		t.Errorf("author should have a review_started notification: %v", err)
	}
}

func TestWorkflowDelete(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)
	InitSystemLogger(db)
	t.Cleanup(func() { InitSystemLogger(nil) })

	owner := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	member := createUser(t, db, "bob", "bob@site.fr", models.RoleBCT)
	project := createProject(t, db, "DEL-09", owner.ID)
	addMember(t, db, project.ID, member.ID, models.MemberMember)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Obsolete plan", Recipients: []string{models.RoleBCT},
	}, owner.ID)
	workflow.Transition(doc.ID, owner.ID, ActionSubmit, "")

	// Plain members cannot delete.
	if err := workflow.Delete(member.ID, doc.ID); !errors.Is(err, ErrDenied) {
		t.Errorf("delete by member: expected ErrDenied, got %v", err)
	}

	if err := workflow.Delete(owner.ID, doc.ID); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}

	if _, err := workflow.GetByID(owner.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("document should be gone, got %v", err)
	}
	var histCount int64
	db.Unscoped().Model(&models.DocumentHistory{}).Where("document_id = ?", doc.ID).Count(&histCount)
	if histCount != 0 {
		t.Errorf("history rows after delete = %d, expected 0", histCount)
	}

	// The deletion left a trace in the system log.
	var logCount int64
	db.Model(&models.SystemLog{}).Where("module = ? AND action = ?", "Documents", "Delete").Count(&logCount)
	if logCount != 1 {
		t.Errorf("system log rows = %d, expected 1", logCount)
	}
}

func TestWorkflowConcurrentModification(t *testing.T) {
	db := setupTestDB(t)
	workflow, _, _ := newTestWorkflow(db)

	author := createUser(t, db, "alice", "alice@site.fr", models.RoleArchitect)
	project := createProject(t, db, "CCM-10", author.ID)

	doc, _ := workflow.Create(&CreateDocumentRequest{
		ProjectID: project.ID, Title: "Contested plan", Recipients: []string{models.RoleArchitect},
	}, author.ID)

	// Simulate a racing writer that bumped the version between the
	// service's read and its guarded update.
	bumped := false
	if err := db.Callback().Update().Before("gorm:update").
		Register("test:bump_version", func(tx *gorm.DB) {
			if bumped || tx.Statement.Table != "documents" {
				return
			}
			bumped = true
			db.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
				Exec("UPDATE documents SET version = version + 1 WHERE id = ?", doc.ID)
		}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() { db.Callback().Update().Remove("test:bump_version") })

	if _, err := workflow.Transition(doc.ID, author.ID, ActionSubmit, ""); !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	// The losing transition must not have written any history.
	var count int64
	db.Model(&models.DocumentHistory{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Errorf("history rows = %d, expected 0", count)
	}
}
