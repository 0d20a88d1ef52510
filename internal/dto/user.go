package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/identity"
)

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the tokens issued on login
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int32  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// UserProfileDTO represents an identity provider user in API responses
type UserProfileDTO struct {
	Username   string            `json:"username"`
	Status     string            `json:"status"`
	Enabled    bool              `json:"enabled"`
	CreatedAt  *time.Time        `json:"createdAt"`
	UpdatedAt  *time.Time        `json:"updatedAt"`
	Attributes map[string]string `json:"attributes"`
}

// ToTokenResponse converts gateway tokens to TokenResponse
func ToTokenResponse(tokens identity.Tokens) TokenResponse {
	return TokenResponse{
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}
}

// ToUserProfileDTO converts a gateway profile to UserProfileDTO
func ToUserProfileDTO(profile identity.Profile) UserProfileDTO {
	attrs := profile.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return UserProfileDTO{
		Username:   profile.Username,
		Status:     profile.Status,
		Enabled:    profile.Enabled,
		CreatedAt:  profile.CreatedAt,
		UpdatedAt:  profile.UpdatedAt,
		Attributes: attrs,
	}
}
