package services

import (
	"testing"

	"github.com/formgate/formgate/backend/internal/models"
)

func TestProjectListRequest_Defaults(t *testing.T) {
	req := &ProjectListRequest{}

	if req.Page != 0 {
		t.Errorf("default Page should be 0, got %d", req.Page)
	}
	if req.PageSize != 0 {
		t.Errorf("default PageSize should be 0, got %d", req.PageSize)
	}
}

func TestProjectService_CreateSeedsAdminMembership(t *testing.T) {
	db := openTestDB(t)
	svc := NewProjectService(db)

	creator := createTestUser(t, db, "creator")
	project, err := svc.Create(&CreateProjectRequest{Name: "new project"}, creator.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var membership models.ProjectUser
	err = db.Where("project_id = ? AND user_id = ?", project.ID, creator.ID).First(&membership).Error
	if err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if !membership.IsAdmin {
		t.Error("creator should be project admin")
	}
	if membership.Status != models.MembershipActive {
		t.Errorf("creator membership status = %q, expected active", membership.Status)
	}
}

func TestProjectService_ListScopedToMember(t *testing.T) {
	db := openTestDB(t)
	svc := NewProjectService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if _, err := svc.Create(&CreateProjectRequest{Name: "alice's"}, alice.ID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(&CreateProjectRequest{Name: "bob's"}, bob.ID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := svc.List(&ProjectListRequest{}, alice.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, expected alice to see only her project", resp.Total)
	}
	if resp.Items[0].Name != "alice's" {
		t.Errorf("visible project = %q, expected %q", resp.Items[0].Name, "alice's")
	}

	// Zero member ID lists everything (global admin view).
	resp, err = svc.List(&ProjectListRequest{}, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Total = %d, expected 2 for the unscoped view", resp.Total)
	}
}

func TestProjectService_PendingMembershipNotVisible(t *testing.T) {
	db := openTestDB(t)
	projectSvc := NewProjectService(db)
	memberSvc := NewMemberService(db)

	owner := createTestUser(t, db, "owner")
	project, err := projectSvc.Create(&CreateProjectRequest{Name: "gated"}, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	applicant := createTestUser(t, db, "applicant")
	if _, err := memberSvc.Add(project.ID, &AddMemberRequest{UserID: applicant.ID}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	resp, err := projectSvc.List(&ProjectListRequest{}, applicant.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("pending member should not see the project, Total = %d", resp.Total)
	}
}

func TestProjectService_DeleteCascades(t *testing.T) {
	db := openTestDB(t)
	svc := NewProjectService(db)

	owner := createTestUser(t, db, "owner")
	project, err := svc.Create(&CreateProjectRequest{Name: "doomed"}, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	role := models.Role{ProjectID: project.ID, Name: "approver"}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	form := models.Form{ProjectID: project.ID, Title: "f", PublicToken: "tok-project-delete", Status: models.FormStatusActive}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}
	submission := models.FormSubmission{FormID: form.ID, Data: "{}"}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}

	if err := svc.Delete(project.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var roles, forms, memberships int64
	db.Model(&models.Role{}).Where("project_id = ?", project.ID).Count(&roles)
	db.Model(&models.Form{}).Where("project_id = ?", project.ID).Count(&forms)
	db.Model(&models.ProjectUser{}).Where("project_id = ?", project.ID).Count(&memberships)
	if roles != 0 || forms != 0 || memberships != 0 {
		t.Errorf("cascade incomplete: roles=%d forms=%d memberships=%d", roles, forms, memberships)
	}
}
