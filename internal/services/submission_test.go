package services

import (
	"errors"
	"testing"

	"github.com/formgate/formgate/backend/internal/models"
)

func TestSubmissionService_CreateOnDraftRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "draft", PublicToken: "tok-draft", Status: models.FormStatusDraft}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	_, err := svc.Create(&form, &admin.ID, "{}", "127.0.0.1")
	if !errors.Is(err, ErrFormNotFillable) {
		t.Fatalf("expected ErrFormNotFillable, got %v", err)
	}
}

func TestSubmissionService_CreateOnClosedRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "closed", PublicToken: "tok-closed", Status: models.FormStatusClosed}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	_, err := svc.Create(&form, &admin.ID, "{}", "127.0.0.1")
	if !errors.Is(err, ErrFormNotFillable) {
		t.Fatalf("expected ErrFormNotFillable, got %v", err)
	}
}

func TestSubmissionService_CreateRecordsSubmitter(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "active", PublicToken: "tok-active", Status: models.FormStatusActive}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	submission, err := svc.Create(&form, &admin.ID, `{"q1":"yes"}`, "10.0.0.9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if submission.UserID == nil || *submission.UserID != admin.ID {
		t.Error("submission should carry the submitter's user ID")
	}
	if submission.SubmitterIP != "10.0.0.9" {
		t.Errorf("SubmitterIP = %q, expected %q", submission.SubmitterIP, "10.0.0.9")
	}
}

func TestSubmissionService_AnonymousSubmission(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "public", PublicToken: "tok-public", IsPublic: true, Status: models.FormStatusActive}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	submission, err := svc.Create(&form, nil, "{}", "203.0.113.5")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if submission.UserID != nil {
		t.Error("anonymous submission should have a nil user ID")
	}
}

func TestSubmissionService_CreateCompletesMatchingTask(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "weekly report", PublicToken: "tok-task", Status: models.FormStatusActive}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	task := models.Task{ProjectID: project.ID, FormID: form.ID, AssigneeID: admin.ID, Title: "weekly report", Status: models.TaskStatusOpen}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if _, err := svc.Create(&form, &admin.ID, "{}", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var reloaded models.Task
	if err := db.First(&reloaded, task.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != models.TaskStatusDone {
		t.Errorf("task status = %q, expected %q", reloaded.Status, models.TaskStatusDone)
	}
}

func TestSubmissionService_AnonymousDoesNotTouchTasks(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	form := models.Form{ProjectID: project.ID, Title: "public", PublicToken: "tok-anon-task", IsPublic: true, Status: models.FormStatusActive}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}

	task := models.Task{ProjectID: project.ID, FormID: form.ID, AssigneeID: admin.ID, Title: "fill it", Status: models.TaskStatusOpen}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if _, err := svc.Create(&form, nil, "{}", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var reloaded models.Task
	if err := db.First(&reloaded, task.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != models.TaskStatusOpen {
		t.Errorf("task status = %q, expected it untouched", reloaded.Status)
	}
}
