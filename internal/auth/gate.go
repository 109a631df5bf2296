package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Annany2002/projecthub-backend/internal/domain"
)

var (
	ErrMissingIdentity  = errors.New("user not authenticated")
	ErrMissingRole      = errors.New("role not found in token")
	ErrInsufficientRole = errors.New("insufficient permissions")
)

// RoleError reports a caller whose role is outside the permitted set.
type RoleError struct {
	Role     domain.Role
	Required []domain.Role
}

func (e *RoleError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return fmt.Sprintf("%s: role %q not in [%s]", ErrInsufficientRole, e.Role, strings.Join(names, ", "))
}

func (e *RoleError) Unwrap() error { return ErrInsufficientRole }

// Authorize decides whether claim may invoke an operation limited to required.
// Checks run in a fixed order: identity present, role present, role permitted.
// With no required roles any identity carrying a role is allowed.
func Authorize(claim *domain.IdentityClaim, required ...domain.Role) error {
	if claim == nil {
		return ErrMissingIdentity
	}
	if claim.Role == "" {
		return ErrMissingRole
	}
	if len(required) == 0 {
		return nil
	}
	for _, r := range required {
		if claim.Role == r {
			return nil
		}
	}
	return &RoleError{Role: claim.Role, Required: append([]domain.Role(nil), required...)}
}
