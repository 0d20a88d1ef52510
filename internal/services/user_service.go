package services

import (
	"context"
	"strings"

	"github.com/yukikurage/project-management-api/internal/identity"
)

// UserService exposes the identity provider to the API.
type UserService struct {
	gateway identity.Gateway
}

// NewUserService creates a new UserService
func NewUserService(gateway identity.Gateway) *UserService {
	return &UserService{gateway: gateway}
}

// Login exchanges credentials for tokens.
func (s *UserService) Login(ctx context.Context, username, password string) (*identity.Tokens, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(username) == "" {
		verr.Add("username", "is required")
	}
	if password == "" {
		verr.Add("password", "is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	return s.gateway.Authenticate(ctx, strings.TrimSpace(username), password)
}

// GetUser returns the provider profile of username.
func (s *UserService) GetUser(ctx context.Context, username string) (*identity.Profile, error) {
	if strings.TrimSpace(username) == "" {
		verr := &ValidationError{}
		verr.Add("username", "is required")
		return nil, verr
	}
	return s.gateway.GetUser(ctx, username)
}
