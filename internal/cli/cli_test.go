package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/identity"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func setLocalEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("IDENTITY_PROVIDER", "local")
	t.Setenv("LOCAL_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ADDR", "")
}

func TestBootstrapLocalProvider(t *testing.T) {
	setLocalEnv(t)

	a, err := bootstrap()
	require.NoError(t, err)
	defer a.close()
	require.NoError(t, database.Migrate(a.db, a.logger))

	gateway, verifier, err := a.identityProvider(context.Background())
	require.NoError(t, err)

	local, err := a.localGateway()
	require.NoError(t, err)
	_, err = local.CreateUser(context.Background(), identity.CreateUserInput{Username: "alice", Password: "password123", Admin: true})
	require.NoError(t, err)

	tokens, err := gateway.Authenticate(context.Background(), "alice", "password123")
	require.NoError(t, err)

	id, err := verifier.Verify(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
}

func TestLocalGatewayRequiresLocalProvider(t *testing.T) {
	a := &app{cfg: &config.Config{IdentityProvider: config.IdentityProviderCognito}}

	_, err := a.localGateway()
	assert.Error(t, err)
}
