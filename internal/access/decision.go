// Package access implements the form access decision procedure: given a
// caller and a form, decide whether the caller may view it. The rules cascade
// from cheapest to most expensive and the first applicable one wins:
// missing form, public form, global admin, project membership, project admin,
// role requirements, role match.
package access

import (
	"fmt"

	"github.com/formgate/formgate/backend/internal/models"
)

// Outcome is the top-level classification of a decision.
type Outcome string

const (
	// OutcomeNotFound means no form exists with the requested ID.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeRedirectPublic means the form is public; callers must use the
	// public rendering path instead of the private one.
	OutcomeRedirectPublic Outcome = "redirect_public"
	// OutcomeGranted means the caller may view the form.
	OutcomeGranted Outcome = "granted"
	// OutcomeDenied means the rules evaluated to "no". This is an expected
	// result, not an error; infrastructure failures are reported separately.
	OutcomeDenied Outcome = "denied"
)

// Reason records which rule produced a Granted or Denied outcome. It is kept
// for audit logging; callers must not branch on it beyond display.
type Reason string

const (
	ReasonGlobalAdmin       Reason = "global_admin"
	ReasonProjectAdmin      Reason = "project_admin"
	ReasonNoRoleRequirement Reason = "no_role_requirement"
	ReasonRoleMatch         Reason = "role_match"
	ReasonNotProjectMember  Reason = "not_project_member"
	ReasonNoMatchingRole    Reason = "no_matching_role"
)

// Decision is the result of resolving a caller's access to a form.
type Decision struct {
	Outcome Outcome
	Reason  Reason
	// Form is the fetched form row, set for every outcome except NotFound so
	// consumers can render without a second fetch.
	Form *models.Form
}

// Granted reports whether the decision permits access.
func (d *Decision) Granted() bool { return d.Outcome == OutcomeGranted }

// StoreError wraps a relation-store failure encountered during resolution.
// It is distinct from a Denied decision: a denial means the rules said no,
// a StoreError means we could not find out.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("access: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
