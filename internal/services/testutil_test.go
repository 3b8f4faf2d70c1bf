package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chantierly/visadoc/internal/models"
)

// setupTestDB opens a fresh in-memory database migrated with all models.
// The name is derived from the test so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Document{},
		&models.DocumentHistory{},
		&models.Notification{},
		&models.Invitation{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// createUser inserts an active user with the given global role.
func createUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: "x",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// createProject inserts a project and its owner membership row.
func createProject(t *testing.T, db *gorm.DB, code string, ownerID uint) *models.Project {
	t.Helper()
	project := &models.Project{
		Code:    code,
		Name:    "Project " + code,
		OwnerID: ownerID,
		Status:  models.ProjectActive,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("create project %s: %v", code, err)
	}
	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      models.MemberOwner,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create owner membership: %v", err)
	}
	return project
}

// addMember inserts a membership row directly, bypassing access checks.
func addMember(t *testing.T, db *gorm.DB, projectID, userID uint, role string) *models.ProjectMember {
	t.Helper()
	member := &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
	return member
}

// newTestWorkflow wires a workflow service with its dependencies on db.
func newTestWorkflow(db *gorm.DB) (*WorkflowService, *AccessService, *NotificationService) {
	notifier := NewNotificationService(db)
	access := NewAccessService(db, notifier)
	return NewWorkflowService(db, access, notifier), access, notifier
}
