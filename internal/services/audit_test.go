package services

import (
	"testing"
	"time"

	"github.com/chantierly/visadoc/internal/models"
)

func TestSystemLogWrite(t *testing.T) {
	db := setupTestDB(t)
	InitSystemLogger(db)
	t.Cleanup(func() { InitSystemLogger(nil) })

	userID := uint(5)
	projectID := uint(9)
	LogInfo("Projects", "Create", "project X created", &userID, &projectID, "10.0.0.1", "curl", map[string]string{"code": "X"})
	LogWarning("Documents", "Delete", "doc removed", &userID, &projectID, "", "", nil)

	var logs []models.SystemLog
	if err := db.Order("id ASC").Find(&logs).Error; err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, expected 2", len(logs))
	}
	if logs[0].Level != "info" || logs[0].Module != "Projects" {
		t.Errorf("first log = %+v", logs[0])
	}
	if logs[0].ProjectID == nil || *logs[0].ProjectID != projectID {
		t.Error("project id should be recorded")
	}
	if logs[0].Extra == "" {
		t.Error("extra payload should be serialized")
	}
	if logs[1].Level != "warning" {
		t.Errorf("second log level = %q", logs[1].Level)
	}
}

func TestSystemLogWriteWithoutInit(t *testing.T) {
	InitSystemLogger(nil)
	// Must not panic when no database is wired.
	LogError("Test", "Noop", "ignored", nil, nil, "", "", nil)
}

func TestSystemLogList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemLogService(db)

	p1, p2 := uint(1), uint(2)
	db.Create(&models.SystemLog{Level: "info", Module: "Projects", Message: "created", ProjectID: &p1, CreatedAt: time.Now()})
	db.Create(&models.SystemLog{Level: "warning", Module: "Documents", Message: "deleted plan", ProjectID: &p1, CreatedAt: time.Now()})
	db.Create(&models.SystemLog{Level: "info", Module: "Projects", Message: "updated", ProjectID: &p2, CreatedAt: time.Now()})

	resp, err := svc.List(&SystemLogListRequest{Level: "info"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("level filter total = %d, expected 2", resp.Total)
	}

	resp, _ = svc.List(&SystemLogListRequest{ProjectID: &p1})
	if resp.Total != 2 {
		t.Errorf("project filter total = %d, expected 2", resp.Total)
	}

	resp, _ = svc.List(&SystemLogListRequest{Search: "plan"})
	if resp.Total != 1 {
		t.Errorf("search total = %d, expected 1", resp.Total)
	}
}

func TestSystemLogCleanupOld(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemLogService(db)

	db.Create(&models.SystemLog{Level: "info", Module: "X", Message: "old", CreatedAt: time.Now().AddDate(0, 0, -90)})
	db.Create(&models.SystemLog{Level: "info", Module: "X", Message: "new", CreatedAt: time.Now()})

	n, err := svc.CleanupOld(30)
	if err != nil {
		t.Fatalf("CleanupOld: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, expected 1", n)
	}

	// Retention disabled means nothing is deleted.
	if n, _ := svc.CleanupOld(0); n != 0 {
		t.Errorf("deleted with retention 0 = %d", n)
	}
}
