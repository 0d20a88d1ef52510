package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// LocalIssuer is the iss claim of tokens minted by the local provider.
const LocalIssuer = "project-management-api"

const (
	tokenUseAccess = "access"
	tokenUseID     = "id"
)

// Claims covers both Cognito and locally issued tokens.
type Claims struct {
	Username        string   `json:"username,omitempty"`
	CognitoUsername string   `json:"cognito:username,omitempty"`
	Groups          []string `json:"groups,omitempty"`
	CognitoGroups   []string `json:"cognito:groups,omitempty"`
	TokenUse        string   `json:"token_use,omitempty"`
	ClientID        string   `json:"client_id,omitempty"`
	Email           string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier resolves a bearer token into the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// JWTVerifier validates signed JWTs.
type JWTVerifier struct {
	keyfunc  jwt.Keyfunc
	methods  []string
	issuer   string
	clientID string
}

// NewHMACVerifier verifies HS256 tokens minted by TokenIssuer.
func NewHMACVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{
		keyfunc: func(*jwt.Token) (interface{}, error) {
			return secret, nil
		},
		methods: []string{jwt.SigningMethodHS256.Alg()},
		issuer:  LocalIssuer,
	}
}

// NewJWKSVerifier verifies RS256 tokens of a Cognito user pool, refreshing
// the pool's signing keys in the background until ctx is done.
func NewJWKSVerifier(ctx context.Context, region, userPoolID, clientID string) (*JWTVerifier, error) {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)

	k, err := keyfunc.NewDefaultCtx(ctx, []string{issuer + "/.well-known/jwks.json"})
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks: %w", err)
	}

	return &JWTVerifier{
		keyfunc:  k.Keyfunc,
		methods:  []string{jwt.SigningMethodRS256.Alg()},
		issuer:   issuer,
		clientID: clientID,
	}, nil
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, v.keyfunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if v.clientID != "" && !claims.issuedFor(v.clientID) {
		return auth.Identity{}, fmt.Errorf("%w: token was issued for another client", ErrInvalidToken)
	}

	username := claims.Username
	if username == "" {
		username = claims.CognitoUsername
	}
	if username == "" {
		return auth.Identity{}, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}

	groups := append(slices.Clone(claims.CognitoGroups), claims.Groups...)
	return auth.Identity{
		Subject:  claims.Subject,
		Username: username,
		Roles:    auth.RolesFromGroups(groups),
	}, nil
}

func (c *Claims) issuedFor(clientID string) bool {
	if c.TokenUse == tokenUseAccess {
		return c.ClientID == clientID
	}
	return slices.Contains(c.Audience, clientID)
}

// TokenIssuer mints HS256 tokens for the local provider.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue mints an access/id token pair and an opaque refresh token for user.
func (i *TokenIssuer) Issue(user *models.User) (*Tokens, error) {
	now := i.now()
	var groups []string
	if user.Admin {
		groups = []string{"Admin"}
	}

	base := func(use string) Claims {
		return Claims{
			Username: user.Username,
			Groups:   groups,
			TokenUse: use,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    LocalIssuer,
				Subject:   strconv.FormatUint(user.ID, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			},
		}
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, base(tokenUseAccess)).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	idClaims := base(tokenUseID)
	idClaims.Email = user.Email
	idClaims.Audience = jwt.ClaimStrings{LocalIssuer}
	id, err := jwt.NewWithClaims(jwt.SigningMethodHS256, idClaims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign id token: %w", err)
	}

	refresh, err := utils.GenerateOpaqueToken(32)
	if err != nil {
		return nil, errors.Join(errors.New("failed to generate refresh token"), err)
	}

	return &Tokens{
		AccessToken:  access,
		IDToken:      id,
		RefreshToken: refresh,
		ExpiresIn:    int32(i.ttl / time.Second),
		TokenType:    "Bearer",
	}, nil
}
