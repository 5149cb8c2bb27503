package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/orangery/ams/backend/internal/auth"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/middleware/metrics"
)

type AuthService interface {
	RegisterMember(ctx context.Context, data SignUp) (string, error)
	RegisterAdmin(ctx context.Context, data SignUp) (string, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

// SignUp is a validated registration payload.
type SignUp struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Username    domain.Username
	Password    domain.Password
	Dob         time.Time
	ProfilePic  string // base64, optional
	EventDates  []domain.EventDateCreationData
}

type AuthStorage interface {
	SaveIdentity(ctx context.Context, data domain.IdentityCreationData) (domain.UserId, error)
	UsernameExists(ctx context.Context, username domain.Username) (bool, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, username domain.Username, password domain.Password) (domain.Identity, error)
}

type RefreshResolver interface {
	ResolveRefresh(ctx context.Context, token string) (domain.Identity, error)
}

type TokenIssuer interface {
	IssueAccess(subject domain.Username) (string, error)
	IssuePair(subject domain.Username) (domain.TokenPair, error)
}

type PictureNormalizer interface {
	Normalize(encoded string) ([]byte, error)
}

type Auth struct {
	storage       AuthStorage
	hasher        PasswordHasher
	authenticator Authenticator
	sessions      RefreshResolver
	tokens        TokenIssuer
	pictures      PictureNormalizer
}

func NewAuth(storage AuthStorage, hasher PasswordHasher, authenticator Authenticator, sessions RefreshResolver, tokens TokenIssuer, pictures PictureNormalizer) *Auth {
	return &Auth{
		storage:       storage,
		hasher:        hasher,
		authenticator: authenticator,
		sessions:      sessions,
		tokens:        tokens,
		pictures:      pictures,
	}
}

// RegisterMember creates a pending user and hands back an access token for it.
func (a *Auth) RegisterMember(ctx context.Context, data SignUp) (string, error) {
	return a.register(ctx, data, domain.RoleUser, domain.StatusPending)
}

// RegisterAdmin creates an admin that is active straight away.
func (a *Auth) RegisterAdmin(ctx context.Context, data SignUp) (string, error) {
	return a.register(ctx, data, domain.RoleAdmin, domain.StatusActive)
}

func (a *Auth) register(ctx context.Context, data SignUp, role domain.Role, status domain.Status) (string, error) {
	username := strings.TrimSpace(data.Username)
	if username == "" {
		return "", internal_errors.BadRequest("Username is required")
	}

	exists, err := a.storage.UsernameExists(ctx, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", internal_errors.ErrDuplicateUsername
	}

	passHash, err := a.hasher.Hash(data.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return "", internal_errors.BadRequest("Password is required")
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", internal_errors.BadRequest("Password must be at most 72 bytes")
		}
		return "", err
	}

	var pic []byte
	if data.ProfilePic != "" {
		if pic, err = a.pictures.Normalize(data.ProfilePic); err != nil {
			return "", err
		}
	}

	// the unique index still decides when two registrations race past the check above
	id, err := a.storage.SaveIdentity(ctx, domain.IdentityCreationData{
		FirstName:   strings.TrimSpace(data.FirstName),
		LastName:    strings.TrimSpace(data.LastName),
		PhoneNumber: strings.TrimSpace(data.PhoneNumber),
		Username:    username,
		PassHash:    passHash,
		Dob:         data.Dob,
		ProfilePic:  pic,
		Role:        role,
		Status:      status,
		EventDates:  data.EventDates,
	})
	if err != nil {
		return "", err
	}
	logger.Log.Info("identity registered", "user_id", id, "role", role, "status", status)

	return a.tokens.IssueAccess(username)
}

// Login checks credentials and issues an access/refresh pair. Pending users may log in;
// every admin route still requires the admin role.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error) {
	identity, err := a.authenticator.Authenticate(ctx, strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		if errors.Is(err, internal_errors.ErrInvalidCredentials) {
			metrics.ObserveLogin(metrics.LoginFailure)
		}
		return domain.TokenPair{}, err
	}
	metrics.ObserveLogin(metrics.LoginSuccess)
	return a.tokens.IssuePair(identity.Username)
}

// Refresh exchanges a refresh token for a new pair; the refresh token rotates.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	identity, err := a.sessions.ResolveRefresh(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return a.tokens.IssuePair(identity.Username)
}
