package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrPasswordTooShort = errors.New("identity: password too short")
	ErrUsernameRequired = errors.New("identity: username is required")
)

// LocalGateway authenticates against the users table. It stands in for
// Cognito in development and tests.
type LocalGateway struct {
	users  repository.UserRepository
	issuer *TokenIssuer
}

// NewLocalGateway creates a LocalGateway.
func NewLocalGateway(users repository.UserRepository, issuer *TokenIssuer) *LocalGateway {
	return &LocalGateway{users: users, issuer: issuer}
}

// CreateUserInput describes a new local account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Admin    bool
}

// CreateUser stores a new account with a bcrypt password hash.
func (g *LocalGateway) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		Admin:        input.Admin,
	}
	if err := g.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the password and mints tokens.
func (g *LocalGateway) Authenticate(ctx context.Context, username, password string) (*Tokens, error) {
	user, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return g.issuer.Issue(user)
}

// GetUser returns the profile of a local account.
func (g *LocalGateway) GetUser(ctx context.Context, username string) (*Profile, error) {
	user, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	createdAt, updatedAt := user.CreatedAt, user.UpdatedAt
	attrs := map[string]string{
		"sub": strconv.FormatUint(user.ID, 10),
	}
	if user.Email != "" {
		attrs["email"] = user.Email
	}

	return &Profile{
		Username:   user.Username,
		Status:     "CONFIRMED",
		Enabled:    true,
		CreatedAt:  &createdAt,
		UpdatedAt:  &updatedAt,
		Attributes: attrs,
	}, nil
}
