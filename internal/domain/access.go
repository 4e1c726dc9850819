package domain

import "slices"

// The predicates below are the role and verification layers of request
// authorization. They only look at the user, so they can be checked without
// any token machinery.

func RequireVerified(u *User) error {
	if u == nil {
		return ErrUnauthenticated
	}
	if !u.Verified {
		return ErrUserNotVerified
	}
	return nil
}

func RequireRole(u *User, allowed ...Role) error {
	if err := RequireVerified(u); err != nil {
		return err
	}
	if !slices.Contains(allowed, u.Role) {
		return ErrForbidden
	}
	return nil
}

// CanViewTask reports whether u may read t: owners see everything, members
// only the tasks they are assigned to.
func CanViewTask(u *User, t *Task) error {
	if u.Role == RoleOwner {
		return nil
	}
	if !t.IsAssignedTo(u.ID) {
		return ErrTaskAccessDenied
	}
	return nil
}

// CanActFor reports whether u may read resources that belong to userID.
func CanActFor(u *User, userID string) error {
	if u.Role == RoleOwner || u.ID == userID {
		return nil
	}
	return ErrAccessDenied
}
