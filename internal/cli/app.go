package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/identity"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// app holds the long-lived resources shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	redis  rueidis.Client
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Warn("failed to close database", slog.Any("error", err))
		}
	}
}

// localGateway builds the users-table provider. It is only valid when the
// local provider is configured.
func (a *app) localGateway() (*identity.LocalGateway, error) {
	if a.cfg.IdentityProvider != config.IdentityProviderLocal {
		return nil, errors.New("local accounts require IDENTITY_PROVIDER=local")
	}
	issuer := identity.NewTokenIssuer([]byte(a.cfg.LocalTokenSecret), a.cfg.LocalTokenTTL)
	return identity.NewLocalGateway(repository.NewUserRepository(a.db), issuer), nil
}

// identityProvider builds the gateway and bearer token verifier for the configured
// provider. ctx bounds background key refresh.
func (a *app) identityProvider(ctx context.Context) (identity.Gateway, identity.Verifier, error) {
	var (
		gateway  identity.Gateway
		verifier identity.Verifier
	)

	switch a.cfg.IdentityProvider {
	case config.IdentityProviderCognito:
		client, err := identity.NewCognitoClient(ctx, a.cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		gateway = identity.NewCognitoGateway(client, a.cfg.CognitoUserPoolID, a.cfg.CognitoClientID, a.cfg.CognitoClientSecret)

		jwks, err := identity.NewJWKSVerifier(ctx, a.cfg.AWSRegion, a.cfg.CognitoUserPoolID, a.cfg.CognitoClientID)
		if err != nil {
			return nil, nil, err
		}
		verifier = jwks
	case config.IdentityProviderLocal:
		local, err := a.localGateway()
		if err != nil {
			return nil, nil, err
		}
		gateway = local
		verifier = identity.NewHMACVerifier([]byte(a.cfg.LocalTokenSecret))
	default:
		return nil, nil, fmt.Errorf("unsupported identity provider %q", a.cfg.IdentityProvider)
	}

	if a.cfg.RedisAddr != "" {
		client, err := identity.NewRedisClient(a.cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		a.redis = client
		cache := identity.NewRedisProfileCache(client, a.cfg.ProfileCacheTTL)
		gateway = identity.NewCachedGateway(gateway, cache, a.logger)
		a.logger.Info("profile cache enabled", slog.String("addr", a.cfg.RedisAddr))
	}

	return gateway, verifier, nil
}
