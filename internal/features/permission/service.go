package permission

import (
	"errors"
	"fmt"

	apperrors "go-elms/pkg/errors"
)

// ErrUnknownRole is a configuration error: the role is not part of the table.
var ErrUnknownRole = errors.New("unknown role")

// ErrUnknownPermission is a configuration error: the permission is not in AllPermissions.
var ErrUnknownPermission = errors.New("unknown permission")

// Resolver answers permission questions from an immutable role table.
type Resolver struct {
	table Table
}

// NewResolver validates that the table is total over AllRoles x AllPermissions
// and holds nothing else.
func NewResolver(table Table) (*Resolver, error) {
	known := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		known[p] = true
	}

	copied := make(Table, len(table))
	for _, role := range AllRoles {
		perms, ok := table[role]
		if !ok {
			return nil, fmt.Errorf("permission table: role %q has no entry", role)
		}
		for _, p := range AllPermissions {
			if _, ok := perms[p]; !ok {
				return nil, fmt.Errorf("permission table: role %q is missing %s", role, p)
			}
		}
		copied[role] = make(map[Permission]bool, len(perms))
		for p, allowed := range perms {
			if !known[p] {
				return nil, fmt.Errorf("permission table: role %q names unknown permission %s", role, p)
			}
			copied[role][p] = allowed
		}
	}

	for role := range table {
		if !IsKnownRole(role) {
			return nil, fmt.Errorf("permission table: %w %q", ErrUnknownRole, role)
		}
	}

	return &Resolver{table: copied}, nil
}

// NewDefaultResolver builds the resolver from DefaultTable.
func NewDefaultResolver() (*Resolver, error) {
	return NewResolver(DefaultTable())
}

func IsKnownPermission(p Permission) bool {
	for _, known := range AllPermissions {
		if known == p {
			return true
		}
	}
	return false
}

// Known satisfies middleware.KnownPermissions so routes naming a missing
// permission fail at setup.
func (r *Resolver) Known(p string) bool {
	return IsKnownPermission(Permission(p))
}

func IsKnownRole(role Role) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole validates a role tag coming from user input or storage.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !IsKnownRole(role) {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
	return role, nil
}

// Permissions returns a copy of the role's total permission map.
func (r *Resolver) Permissions(role Role) (map[Permission]bool, error) {
	perms, ok := r.table[role]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	out := make(map[Permission]bool, len(perms))
	for p, allowed := range perms {
		out[p] = allowed
	}
	return out, nil
}

func (r *Resolver) Has(role Role, p Permission) (bool, error) {
	perms, ok := r.table[role]
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	allowed, ok := perms[p]
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownPermission, p)
	}
	return allowed, nil
}

// Allowed satisfies middleware.PermissionChecker.
func (r *Resolver) Allowed(role string, p string) (bool, error) {
	return r.Has(Role(role), Permission(p))
}

// Require returns a PermissionError when the actor's role lacks p.
func (r *Resolver) Require(actor Actor, p Permission) error {
	ok, err := r.Has(actor.Role, p)
	if err != nil {
		return apperrors.NewInternalError("permission lookup", err)
	}
	if !ok {
		return apperrors.NewPermissionError(string(p), string(actor.Role))
	}
	return nil
}

// RequireAny passes when the role holds at least one of the permissions.
func (r *Resolver) RequireAny(actor Actor, ps ...Permission) error {
	for _, p := range ps {
		ok, err := r.Has(actor.Role, p)
		if err != nil {
			return apperrors.NewInternalError("permission lookup", err)
		}
		if ok {
			return nil
		}
	}
	if len(ps) == 0 {
		return nil
	}
	return apperrors.NewPermissionError(string(ps[0]), string(actor.Role))
}

// Roles lists the full table for the roles endpoint.
func (r *Resolver) Roles() []RoleInfo {
	out := make([]RoleInfo, 0, len(AllRoles))
	for _, role := range AllRoles {
		perms, _ := r.Permissions(role)
		out = append(out, RoleInfo{Role: role, DisplayName: DisplayName(role), Permissions: perms})
	}
	return out
}
