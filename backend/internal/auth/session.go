package auth

import (
	"context"
	"fmt"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
)

type TokenDecoder interface {
	DecodeKind(token string, kind domain.TokenKind) (domain.Username, error)
}

// SessionResolver turns a bearer token into the identity it names. The identity is
// fetched on every call so deletions take effect immediately.
type SessionResolver struct {
	tokens  TokenDecoder
	storage IdentityStorage
}

func NewSessionResolver(tokens TokenDecoder, storage IdentityStorage) *SessionResolver {
	return &SessionResolver{tokens: tokens, storage: storage}
}

func (s *SessionResolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	return s.resolve(ctx, token, domain.TokenAccess)
}

// ResolveRefresh is Resolve for refresh tokens.
func (s *SessionResolver) ResolveRefresh(ctx context.Context, token string) (domain.Identity, error) {
	return s.resolve(ctx, token, domain.TokenRefresh)
}

func (s *SessionResolver) resolve(ctx context.Context, token string, kind domain.TokenKind) (domain.Identity, error) {
	subject, err := s.tokens.DecodeKind(token, kind)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", internal_errors.ErrInvalidToken, err)
	}
	identity, err := s.storage.PrincipalByUsername(ctx, subject)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.Identity{}, internal_errors.ErrStaleIdentity
		}
		return domain.Identity{}, err
	}
	return identity, nil
}
