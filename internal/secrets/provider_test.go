package secrets_test

import (
	"context"
	"testing"

	"github.com/garmentiq/revenue-forecast-api/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      secrets.SecretSource
		environment string
		want        secrets.SecretSource
	}{
		{secrets.SourceAuto, "development", secrets.SourceEnvironment},
		{secrets.SourceAuto, "", secrets.SourceEnvironment},
		{secrets.SourceAuto, "staging", secrets.SourceVault},
		{secrets.SourceAuto, "production", secrets.SourceVault},
		{secrets.SourceEnvironment, "production", secrets.SourceEnvironment},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.want, secrets.ResolveSource(tt.source, tt.environment))
		})
	}
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	p, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:      secrets.SourceAuto,
		Environment: "development",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsVaultEnabled())

	v, err := p.GetSecret(context.Background(), "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(context.Background(), "NOT_SET_ANYWHERE")
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnv_PrefersEnv(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "override")

	p, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)

	v, err := p.GetSecretOrEnv(context.Background(), "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "override", v)
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceVault}, zap.NewNop())
	assert.Error(t, err)
}
