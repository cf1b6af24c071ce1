package services

import (
	"errors"
	"testing"

	"github.com/formgate/formgate/backend/internal/models"
)

func TestMemberService_AddStartsPending(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	joiner := createTestUser(t, db, "joiner")

	membership, err := svc.Add(project.ID, &AddMemberRequest{UserID: joiner.ID})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if membership.Status != models.MembershipPending {
		t.Errorf("Status = %q, expected %q", membership.Status, models.MembershipPending)
	}
	if membership.IsAdmin {
		t.Error("plain member should not be admin")
	}
}

func TestMemberService_AddAdminIsImmediatelyActive(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	coAdmin := createTestUser(t, db, "co-admin")

	membership, err := svc.Add(project.ID, &AddMemberRequest{UserID: coAdmin.ID, IsAdmin: true})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if membership.Status != models.MembershipActive {
		t.Errorf("Status = %q, expected %q", membership.Status, models.MembershipActive)
	}
}

func TestMemberService_AddRejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)

	_, err := svc.Add(project.ID, &AddMemberRequest{UserID: admin.ID})
	if err == nil {
		t.Fatal("expected duplicate membership to be rejected")
	}
}

func TestMemberService_RemoveLastAdminRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)

	err := svc.Remove(project.ID, admin.ID)
	if !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestMemberService_DemoteLastAdminRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)

	notAdmin := false
	_, err := svc.Update(project.ID, admin.ID, &UpdateMemberRequest{IsAdmin: &notAdmin})
	if !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	inactive := models.MembershipInactive
	_, err = svc.Update(project.ID, admin.ID, &UpdateMemberRequest{Status: &inactive})
	if !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin for deactivation, got %v", err)
	}
}

func TestMemberService_DemoteWithSecondAdminAllowed(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	second := createTestUser(t, db, "second")
	addTestMember(t, db, project.ID, second.ID, true)

	notAdmin := false
	membership, err := svc.Update(project.ID, admin.ID, &UpdateMemberRequest{IsAdmin: &notAdmin})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if membership == nil {
		t.Fatal("expected updated membership")
	}

	var reloaded models.ProjectUser
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, admin.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsAdmin {
		t.Error("membership should have been demoted")
	}
}

func TestMemberService_RemoveDeletesRoleAssignments(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	member := createTestUser(t, db, "member")
	addTestMember(t, db, project.ID, member.ID, false)

	role := models.Role{ProjectID: project.ID, Name: "reviewer"}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	assignment := models.UserRole{UserID: member.ID, RoleID: role.ID, ProjectID: project.ID}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to assign role: %v", err)
	}

	if err := svc.Remove(project.ID, member.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	var count int64
	db.Model(&models.UserRole{}).Where("user_id = ?", member.ID).Count(&count)
	if count != 0 {
		t.Errorf("role assignments should be deleted with the membership, found %d", count)
	}
}

func TestMemberService_IsProjectAdmin(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberService(db)

	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, "p1", admin.ID)
	member := createTestUser(t, db, "member")
	addTestMember(t, db, project.ID, member.ID, false)

	isAdmin, err := svc.IsProjectAdmin(project.ID, admin.ID)
	if err != nil {
		t.Fatalf("IsProjectAdmin failed: %v", err)
	}
	if !isAdmin {
		t.Error("admin should be reported as project admin")
	}

	isAdmin, err = svc.IsProjectAdmin(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsProjectAdmin failed: %v", err)
	}
	if isAdmin {
		t.Error("plain member should not be reported as project admin")
	}
}
