package auth

import (
	"context"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
)

// IdentityStorage is the read side of the credential store the kernel needs.
type IdentityStorage interface {
	// PrincipalByUsername loads the identity row alone, without event dates.
	PrincipalByUsername(ctx context.Context, username domain.Username) (domain.Identity, error)
}

type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

type Authenticator struct {
	storage IdentityStorage
	hasher  PasswordVerifier
}

func NewAuthenticator(storage IdentityStorage, hasher PasswordVerifier) *Authenticator {
	return &Authenticator{storage: storage, hasher: hasher}
}

// Authenticate returns ErrInvalidCredentials for both an unknown username and a wrong password.
func (a *Authenticator) Authenticate(ctx context.Context, username domain.Username, password domain.Password) (domain.Identity, error) {
	identity, err := a.storage.PrincipalByUsername(ctx, username)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.Identity{}, internal_errors.ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}
	if !a.hasher.Verify(password, identity.PassHash) {
		logger.Log.Debug("password mismatch", "user_id", identity.Id)
		return domain.Identity{}, internal_errors.ErrInvalidCredentials
	}
	return identity, nil
}
