package access

import (
	"context"

	"github.com/formgate/formgate/backend/internal/models"
)

// Resolver evaluates form access for a caller. It holds no state between
// calls: every resolution reads fresh data, so a role downgrade takes effect
// on the next request rather than surviving in a cached flag.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve decides whether userID may view formID. Rules are evaluated in
// strict order and the first applicable one wins; later checks are only
// issued when earlier ones fail, so each step's result is consistent with
// the short-circuit point. A non-nil error always wraps a *StoreError and
// means the decision could not be computed; it is never a denial.
func (r *Resolver) Resolve(ctx context.Context, userID, formID uint) (*Decision, error) {
	form, err := r.store.FetchForm(ctx, formID)
	if err != nil {
		return nil, &StoreError{Op: "fetch form", Err: err}
	}
	if form == nil {
		return &Decision{Outcome: OutcomeNotFound}, nil
	}

	if form.IsPublic {
		return &Decision{Outcome: OutcomeRedirectPublic, Form: form}, nil
	}

	globalRole, err := r.store.FetchGlobalRole(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "fetch global role", Err: err}
	}
	if globalRole == models.GlobalRoleAdmin {
		return &Decision{Outcome: OutcomeGranted, Reason: ReasonGlobalAdmin, Form: form}, nil
	}

	membership, err := r.store.FetchMembership(ctx, form.ProjectID, userID)
	if err != nil {
		return nil, &StoreError{Op: "fetch membership", Err: err}
	}
	// Only an active membership counts; pending, inactive and rejected rows
	// are the same as no membership at all.
	if membership == nil || membership.Status != models.MembershipActive {
		return &Decision{Outcome: OutcomeDenied, Reason: ReasonNotProjectMember, Form: form}, nil
	}

	if membership.IsAdmin {
		return &Decision{Outcome: OutcomeGranted, Reason: ReasonProjectAdmin, Form: form}, nil
	}

	required, err := r.store.FetchFormRoleRequirements(ctx, formID)
	if err != nil {
		return nil, &StoreError{Op: "fetch form role requirements", Err: err}
	}
	if len(required) == 0 {
		return &Decision{Outcome: OutcomeGranted, Reason: ReasonNoRoleRequirement, Form: form}, nil
	}

	held, err := r.store.FetchUserRoleAssignments(ctx, form.ProjectID, userID)
	if err != nil {
		return nil, &StoreError{Op: "fetch user role assignments", Err: err}
	}
	heldSet := make(map[uint]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}
	for _, id := range required {
		if _, ok := heldSet[id]; ok {
			return &Decision{Outcome: OutcomeGranted, Reason: ReasonRoleMatch, Form: form}, nil
		}
	}

	return &Decision{Outcome: OutcomeDenied, Reason: ReasonNoMatchingRole, Form: form}, nil
}
