package services

import (
	"fmt"
	"testing"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test; shared cache keeps it alive
	// across the pool's connections within the test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectUser{},
		&models.Role{},
		&models.UserRole{},
		&models.Form{},
		&models.FormRole{},
		&models.FormSubmission{},
		&models.TaskTemplate{},
		&models.Task{},
		&models.SystemConfig{},
		&models.SystemLog{},
		&models.RefreshToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Role: models.GlobalRoleUser, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, name string, adminID uint) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, Status: "active", CreatedBy: adminID}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	membership := &models.ProjectUser{
		ProjectID: project.ID,
		UserID:    adminID,
		IsAdmin:   true,
		Status:    models.MembershipActive,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create admin membership: %v", err)
	}
	return project
}

func addTestMember(t *testing.T, db *gorm.DB, projectID, userID uint, isAdmin bool) *models.ProjectUser {
	t.Helper()
	membership := &models.ProjectUser{
		ProjectID: projectID,
		UserID:    userID,
		IsAdmin:   isAdmin,
		Status:    models.MembershipActive,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return membership
}
