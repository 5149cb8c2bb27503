package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
)

type JwtService interface {
	IssueAccess(subject domain.Username) (string, error)
	IssueRefresh(subject domain.Username) (string, error)
	IssuePair(subject domain.Username) (domain.TokenPair, error)
	Decode(token string) (domain.Username, error)
	DecodeKind(token string, kind domain.TokenKind) (domain.Username, error)
}

// Claims is the payload of both access and refresh tokens. They differ only in expiry and typ.
type Claims struct {
	Kind domain.TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

type Jwt struct {
	secretKey  []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Jwt)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *Jwt) { j.now = now }
}

// New builds the token service from the immutable jwt config.
// Only HMAC algorithms are accepted since the key is a shared secret.
func New(cfg config.Jwt, opts ...Option) (*Jwt, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is empty")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = config.DefaultAlgorithm
	}
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	accessTTL := cfg.AccessTTL()
	if accessTTL <= 0 {
		accessTTL = config.DefaultAccessTTLMinutes * time.Minute
	}
	refreshTTL := cfg.RefreshTTL()
	if refreshTTL <= 0 {
		refreshTTL = config.DefaultRefreshTTLDays * 24 * time.Hour
	}

	j := &Jwt{
		secretKey:  []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *Jwt) IssueAccess(subject domain.Username) (string, error) {
	return j.issue(subject, domain.TokenAccess, j.accessTTL)
}

func (j *Jwt) IssueRefresh(subject domain.Username) (string, error) {
	return j.issue(subject, domain.TokenRefresh, j.refreshTTL)
}

func (j *Jwt) IssuePair(subject domain.Username) (domain.TokenPair, error) {
	access, err := j.IssueAccess(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := j.IssueRefresh(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(j.accessTTL / time.Minute),
	}, nil
}

// AccessTTL is the configured access token lifetime.
func (j *Jwt) AccessTTL() time.Duration {
	return j.accessTTL
}

func (j *Jwt) issue(subject domain.Username, kind domain.TokenKind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject is empty")
	}
	now := j.now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(j.method, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("failed to sign token", "kind", kind, "error", err)
		return "", fmt.Errorf("can't create token")
	}
	return tokenString, nil
}

// Decode verifies signature, algorithm and expiry and returns the subject.
// Every failure wraps errors.ErrInvalidToken.
func (j *Jwt) Decode(tokenString string) (domain.Username, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// DecodeKind is Decode restricted to one token kind.
func (j *Jwt) DecodeKind(tokenString string, kind domain.TokenKind) (domain.Username, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Kind != kind {
		return "", fmt.Errorf("%w: expected %s token, got %q", internal_errors.ErrInvalidToken, kind, claims.Kind)
	}
	return claims.Subject, nil
}

func (j *Jwt) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", internal_errors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, internal_errors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", internal_errors.ErrInvalidToken)
	}
	return claims, nil
}
