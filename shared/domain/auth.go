package domain

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

type Credentials struct {
	Username Username
	Password Password
}

// TokenPair is what a successful login hands back. ExpiresIn is the access token lifetime in minutes.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}
