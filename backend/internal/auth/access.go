package auth

import (
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
)

// RequireRole is an exact role match. An admin does not pass a user-only gate.
func RequireRole(identity domain.Identity, required domain.Role) error {
	if !identity.Role.Satisfies(required) {
		return internal_errors.ErrForbidden
	}
	return nil
}
