package access

import (
	"context"
	"errors"
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
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// fixtures creates project p1 with form f1 (private) and users covering the
// common caller shapes. Returns IDs keyed by the names used in the tests.
type fixtures struct {
	db *gorm.DB

	Project      models.Project
	Form         models.Form
	GlobalAdmin  models.User
	ProjectAdmin models.User
	Member       models.User
	Outsider     models.User
	Role         models.Role
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	db := openTestDB(t)
	f := &fixtures{db: db}

	f.Project = models.Project{Name: "onboarding"}
	mustCreate(t, db, &f.Project)

	f.Form = models.Form{ProjectID: f.Project.ID, Title: "equipment request", Status: models.FormStatusActive}
	mustCreate(t, db, &f.Form)

	f.GlobalAdmin = models.User{Username: "root", Role: models.GlobalRoleAdmin}
	f.ProjectAdmin = models.User{Username: "lead", Role: models.GlobalRoleUser}
	f.Member = models.User{Username: "member", Role: models.GlobalRoleUser}
	f.Outsider = models.User{Username: "outsider", Role: models.GlobalRoleUser}
	for _, u := range []*models.User{&f.GlobalAdmin, &f.ProjectAdmin, &f.Member, &f.Outsider} {
		mustCreate(t, db, u)
	}

	mustCreate(t, db, &models.ProjectUser{
		ProjectID: f.Project.ID, UserID: f.ProjectAdmin.ID, IsAdmin: true, Status: models.MembershipActive,
	})
	mustCreate(t, db, &models.ProjectUser{
		ProjectID: f.Project.ID, UserID: f.Member.ID, IsAdmin: false, Status: models.MembershipActive,
	})

	f.Role = models.Role{ProjectID: f.Project.ID, Name: "approver"}
	mustCreate(t, db, &f.Role)

	return f
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create fixture %T: %v", value, err)
	}
}

func (f *fixtures) resolver() *Resolver {
	return NewResolver(NewGormStore(f.db))
}

func resolve(t *testing.T, r *Resolver, userID, formID uint) *Decision {
	t.Helper()
	decision, err := r.Resolve(context.Background(), userID, formID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return decision
}

func TestResolve_FormNotFound(t *testing.T) {
	f := newFixtures(t)

	decision := resolve(t, f.resolver(), f.Member.ID, 9999)

	if decision.Outcome != OutcomeNotFound {
		t.Errorf("Outcome = %q, expected %q", decision.Outcome, OutcomeNotFound)
	}
	if decision.Form != nil {
		t.Error("Form should be nil for a not-found decision")
	}
}

func TestResolve_PublicFormRedirects(t *testing.T) {
	f := newFixtures(t)
	if err := f.db.Model(&f.Form).Update("is_public", true).Error; err != nil {
		t.Fatalf("failed to mark form public: %v", err)
	}

	// Public overrides everything: membership, roles, even no identity at all.
	callers := []uint{f.GlobalAdmin.ID, f.ProjectAdmin.ID, f.Member.ID, f.Outsider.ID}
	for _, userID := range callers {
		decision := resolve(t, f.resolver(), userID, f.Form.ID)
		if decision.Outcome != OutcomeRedirectPublic {
			t.Errorf("user %d: Outcome = %q, expected %q", userID, decision.Outcome, OutcomeRedirectPublic)
		}
		if decision.Form == nil {
			t.Errorf("user %d: redirect decision should carry the form row", userID)
		}
	}
}

func TestResolve_GlobalAdminWithoutMembership(t *testing.T) {
	f := newFixtures(t)

	decision := resolve(t, f.resolver(), f.GlobalAdmin.ID, f.Form.ID)

	if decision.Outcome != OutcomeGranted {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeGranted)
	}
	if decision.Reason != ReasonGlobalAdmin {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonGlobalAdmin)
	}
}

func TestResolve_ProjectAdminIgnoresRoleRequirements(t *testing.T) {
	f := newFixtures(t)
	mustCreate(t, f.db, &models.FormRole{FormID: f.Form.ID, RoleID: f.Role.ID})

	decision := resolve(t, f.resolver(), f.ProjectAdmin.ID, f.Form.ID)

	if decision.Outcome != OutcomeGranted {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeGranted)
	}
	if decision.Reason != ReasonProjectAdmin {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonProjectAdmin)
	}
}

func TestResolve_MemberNoRoleRequirement(t *testing.T) {
	f := newFixtures(t)

	decision := resolve(t, f.resolver(), f.Member.ID, f.Form.ID)

	if decision.Outcome != OutcomeGranted {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeGranted)
	}
	if decision.Reason != ReasonNoRoleRequirement {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNoRoleRequirement)
	}
	if decision.Form == nil || decision.Form.ID != f.Form.ID {
		t.Error("granted decision should carry the fetched form row")
	}
}

func TestResolve_MemberWithoutRequiredRole(t *testing.T) {
	f := newFixtures(t)
	mustCreate(t, f.db, &models.FormRole{FormID: f.Form.ID, RoleID: f.Role.ID})

	decision := resolve(t, f.resolver(), f.Member.ID, f.Form.ID)

	if decision.Outcome != OutcomeDenied {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeDenied)
	}
	if decision.Reason != ReasonNoMatchingRole {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNoMatchingRole)
	}
}

func TestResolve_MemberWithMatchingRole(t *testing.T) {
	f := newFixtures(t)
	mustCreate(t, f.db, &models.FormRole{FormID: f.Form.ID, RoleID: f.Role.ID})
	mustCreate(t, f.db, &models.UserRole{
		UserID: f.Member.ID, RoleID: f.Role.ID, ProjectID: f.Project.ID,
	})

	decision := resolve(t, f.resolver(), f.Member.ID, f.Form.ID)

	if decision.Outcome != OutcomeGranted {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeGranted)
	}
	if decision.Reason != ReasonRoleMatch {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonRoleMatch)
	}
}

func TestResolve_NonMemberDenied(t *testing.T) {
	f := newFixtures(t)

	decision := resolve(t, f.resolver(), f.Outsider.ID, f.Form.ID)

	if decision.Outcome != OutcomeDenied {
		t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeDenied)
	}
	if decision.Reason != ReasonNotProjectMember {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNotProjectMember)
	}
}

// A membership that is pending, inactive or rejected is the same as no
// membership: it must not open the project's private forms, not even when
// the form has no role requirement, and a role assignment or an admin flag on
// the dead row must not resurrect it.
func TestResolve_NonActiveMembershipDenied(t *testing.T) {
	for _, status := range []string{
		models.MembershipPending,
		models.MembershipInactive,
		models.MembershipRejected,
	} {
		t.Run(status, func(t *testing.T) {
			f := newFixtures(t)
			mustCreate(t, f.db, &models.ProjectUser{
				ProjectID: f.Project.ID, UserID: f.Outsider.ID, IsAdmin: true, Status: status,
			})
			mustCreate(t, f.db, &models.UserRole{
				UserID: f.Outsider.ID, RoleID: f.Role.ID, ProjectID: f.Project.ID,
			})

			decision := resolve(t, f.resolver(), f.Outsider.ID, f.Form.ID)

			if decision.Outcome != OutcomeDenied {
				t.Fatalf("Outcome = %q, expected %q", decision.Outcome, OutcomeDenied)
			}
			if decision.Reason != ReasonNotProjectMember {
				t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNotProjectMember)
			}
		})
	}
}

// A role held in another project must not satisfy this form's requirement,
// and must not turn a non-member into a member.
func TestResolve_CrossProjectRoleDoesNotLeak(t *testing.T) {
	f := newFixtures(t)

	other := models.Project{Name: "other"}
	mustCreate(t, f.db, &other)
	otherRole := models.Role{ProjectID: other.ID, Name: "approver"}
	mustCreate(t, f.db, &otherRole)

	mustCreate(t, f.db, &models.FormRole{FormID: f.Form.ID, RoleID: f.Role.ID})

	// Outsider holds a same-named role, but in the other project.
	mustCreate(t, f.db, &models.ProjectUser{
		ProjectID: other.ID, UserID: f.Outsider.ID, Status: models.MembershipActive,
	})
	mustCreate(t, f.db, &models.UserRole{
		UserID: f.Outsider.ID, RoleID: otherRole.ID, ProjectID: other.ID,
	})

	decision := resolve(t, f.resolver(), f.Outsider.ID, f.Form.ID)
	if decision.Outcome != OutcomeDenied || decision.Reason != ReasonNotProjectMember {
		t.Errorf("decision = %q/%q, expected denied/not_project_member", decision.Outcome, decision.Reason)
	}

	// Member holds the other project's role: member of p1, but the assignment
	// is scoped elsewhere, so it must not count as a match.
	mustCreate(t, f.db, &models.UserRole{
		UserID: f.Member.ID, RoleID: otherRole.ID, ProjectID: other.ID,
	})
	decision = resolve(t, f.resolver(), f.Member.ID, f.Form.ID)
	if decision.Outcome != OutcomeDenied || decision.Reason != ReasonNoMatchingRole {
		t.Errorf("decision = %q/%q, expected denied/no_matching_role", decision.Outcome, decision.Reason)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	f := newFixtures(t)
	r := f.resolver()

	first := resolve(t, r, f.Member.ID, f.Form.ID)
	second := resolve(t, r, f.Member.ID, f.Form.ID)

	if first.Outcome != second.Outcome || first.Reason != second.Reason {
		t.Errorf("consecutive resolutions diverged: %q/%q then %q/%q",
			first.Outcome, first.Reason, second.Outcome, second.Reason)
	}
}

// Resolution ignores form status entirely: a closed form resolves the same
// as an active one. Fillability is a separate concern of the gate.
func TestResolve_StatusDoesNotAffectDecision(t *testing.T) {
	f := newFixtures(t)
	if err := f.db.Model(&f.Form).Update("status", models.FormStatusClosed).Error; err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	decision := resolve(t, f.resolver(), f.Member.ID, f.Form.ID)
	if decision.Outcome != OutcomeGranted || decision.Reason != ReasonNoRoleRequirement {
		t.Errorf("decision = %q/%q, expected granted/no_role_requirement", decision.Outcome, decision.Reason)
	}
}

// failingStore wraps a Store and fails a single named operation, to verify
// store errors surface as errors and never as denials.
type failingStore struct {
	Store
	failOp string
}

var errStoreDown = errors.New("connection reset")

func (s *failingStore) FetchForm(ctx context.Context, formID uint) (*models.Form, error) {
	if s.failOp == "form" {
		return nil, errStoreDown
	}
	return s.Store.FetchForm(ctx, formID)
}

func (s *failingStore) FetchGlobalRole(ctx context.Context, userID uint) (string, error) {
	if s.failOp == "global_role" {
		return "", errStoreDown
	}
	return s.Store.FetchGlobalRole(ctx, userID)
}

func (s *failingStore) FetchMembership(ctx context.Context, projectID, userID uint) (*models.ProjectUser, error) {
	if s.failOp == "membership" {
		return nil, errStoreDown
	}
	return s.Store.FetchMembership(ctx, projectID, userID)
}

func (s *failingStore) FetchFormRoleRequirements(ctx context.Context, formID uint) ([]uint, error) {
	if s.failOp == "form_roles" {
		return nil, errStoreDown
	}
	return s.Store.FetchFormRoleRequirements(ctx, formID)
}

func (s *failingStore) FetchUserRoleAssignments(ctx context.Context, projectID, userID uint) ([]uint, error) {
	if s.failOp == "user_roles" {
		return nil, errStoreDown
	}
	return s.Store.FetchUserRoleAssignments(ctx, projectID, userID)
}

func TestResolve_StoreFailureIsNotDenial(t *testing.T) {
	f := newFixtures(t)
	mustCreate(t, f.db, &models.FormRole{FormID: f.Form.ID, RoleID: f.Role.ID})
	mustCreate(t, f.db, &models.UserRole{
		UserID: f.Member.ID, RoleID: f.Role.ID, ProjectID: f.Project.ID,
	})

	for _, op := range []string{"form", "global_role", "membership", "form_roles", "user_roles"} {
		t.Run(op, func(t *testing.T) {
			r := NewResolver(&failingStore{Store: NewGormStore(f.db), failOp: op})

			decision, err := r.Resolve(context.Background(), f.Member.ID, f.Form.ID)
			if err == nil {
				t.Fatalf("expected error when %s fetch fails, got decision %+v", op, decision)
			}
			if decision != nil {
				t.Errorf("decision should be nil on store failure, got %+v", decision)
			}

			var storeErr *StoreError
			if !errors.As(err, &storeErr) {
				t.Errorf("error should wrap *StoreError, got %T", err)
			}
			if !errors.Is(err, errStoreDown) {
				t.Errorf("error should wrap the underlying cause, got %v", err)
			}
		})
	}
}

func TestResolve_EvaluationOrderShortCircuits(t *testing.T) {
	f := newFixtures(t)

	// Membership fetch is wired to fail, but a public form never gets there.
	if err := f.db.Model(&f.Form).Update("is_public", true).Error; err != nil {
		t.Fatalf("failed to mark form public: %v", err)
	}
	r := NewResolver(&failingStore{Store: NewGormStore(f.db), failOp: "membership"})

	decision, err := r.Resolve(context.Background(), f.Member.ID, f.Form.ID)
	if err != nil {
		t.Fatalf("public check should short-circuit before membership: %v", err)
	}
	if decision.Outcome != OutcomeRedirectPublic {
		t.Errorf("Outcome = %q, expected %q", decision.Outcome, OutcomeRedirectPublic)
	}
}

func TestStoreError_Message(t *testing.T) {
	err := &StoreError{Op: "fetch form", Err: errStoreDown}

	want := fmt.Sprintf("access: fetch form: %v", errStoreDown)
	if err.Error() != want {
		t.Errorf("Error() = %q, expected %q", err.Error(), want)
	}
	if !errors.Is(err, errStoreDown) {
		t.Error("Unwrap should expose the cause")
	}
}
