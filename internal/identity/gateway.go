// Package identity talks to the identity provider: it exchanges credentials
// for tokens, looks up user profiles and verifies bearer tokens.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("identity: invalid username or password")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrChallengeRequired  = errors.New("identity: additional authentication challenge required")
	ErrInvalidToken       = errors.New("identity: invalid token")
)

// Tokens is the result of a successful authentication.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// Profile is the provider's view of a user.
type Profile struct {
	Username   string
	Status     string
	Enabled    bool
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
	Attributes map[string]string
}

// Gateway is the boundary to the identity provider.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string) (*Tokens, error)
	GetUser(ctx context.Context, username string) (*Profile, error)
}
