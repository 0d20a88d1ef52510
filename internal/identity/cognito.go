package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI is the subset of the Cognito user pool client the gateway uses.
type CognitoAPI interface {
	AdminInitiateAuth(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error)
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
}

// CognitoGateway authenticates against an AWS Cognito user pool.
type CognitoGateway struct {
	client       CognitoAPI
	userPoolID   string
	clientID     string
	clientSecret string
}

// NewCognitoClient builds a user pool client from the default AWS credential
// chain.
func NewCognitoClient(ctx context.Context, region string) (*cognitoidentityprovider.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

// NewCognitoGateway creates a CognitoGateway. clientSecret may be empty for
// app clients without a secret.
func NewCognitoGateway(client CognitoAPI, userPoolID, clientID, clientSecret string) *CognitoGateway {
	return &CognitoGateway{
		client:       client,
		userPoolID:   userPoolID,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Authenticate runs the admin username/password flow.
func (g *CognitoGateway) Authenticate(ctx context.Context, username, password string) (*Tokens, error) {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if g.clientSecret != "" {
		params["SECRET_HASH"] = SecretHash(username, g.clientID, g.clientSecret)
	}

	out, err := g.client.AdminInitiateAuth(ctx, &cognitoidentityprovider.AdminInitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeAdminUserPasswordAuth,
		UserPoolId:     aws.String(g.userPoolID),
		ClientId:       aws.String(g.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, mapCognitoError("initiate auth", err)
	}

	if out.ChallengeName != "" {
		return nil, fmt.Errorf("%w: %s", ErrChallengeRequired, out.ChallengeName)
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("cognito: initiate auth returned no tokens")
	}

	result := out.AuthenticationResult
	return &Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    result.ExpiresIn,
		TokenType:    aws.ToString(result.TokenType),
	}, nil
}

// GetUser fetches a user's profile from the pool.
func (g *CognitoGateway) GetUser(ctx context.Context, username string) (*Profile, error) {
	out, err := g.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(g.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, mapCognitoError("get user", err)
	}

	attrs := make(map[string]string, len(out.UserAttributes))
	for _, a := range out.UserAttributes {
		attrs[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}

	return &Profile{
		Username:   aws.ToString(out.Username),
		Status:     string(out.UserStatus),
		Enabled:    out.Enabled,
		CreatedAt:  out.UserCreateDate,
		UpdatedAt:  out.UserLastModifiedDate,
		Attributes: attrs,
	}, nil
}

// SecretHash computes the SECRET_HASH auth parameter required by app clients
// that carry a client secret.
func SecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func mapCognitoError(op string, err error) error {
	var (
		notAuthorized *types.NotAuthorizedException
		notFound      *types.UserNotFoundException
		resetRequired *types.PasswordResetRequiredException
		notConfirmed  *types.UserNotConfirmedException
	)

	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, aws.ToString(notAuthorized.Message))
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %s", ErrUserNotFound, aws.ToString(notFound.Message))
	case errors.As(err, &resetRequired):
		return fmt.Errorf("%w: password reset required", ErrChallengeRequired)
	case errors.As(err, &notConfirmed):
		return fmt.Errorf("%w: user not confirmed", ErrChallengeRequired)
	default:
		return fmt.Errorf("cognito: %s: %w", op, err)
	}
}
