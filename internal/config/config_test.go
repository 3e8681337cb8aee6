package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5009, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "your_default_jwt_secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.DataWarehouse.Enabled)
	assert.Equal(t, "local", cfg.Storage.Mode)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "override-secret")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("PORT", "8088")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "override-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

type mapSource map[string]string

func (m mapSource) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "keep-me"
	cfg.DataWarehouse.Enabled = true

	err := applySecrets(context.Background(), cfg, mapSource{
		"JWT-SECRET":         "vault-jwt",
		"REDIS-PASSWORD":     "redis-pw",
		"WAREHOUSE-URL":      "dw.example:1433/econ",
		"WAREHOUSE-USERNAME": "reader",
	})
	require.NoError(t, err)

	assert.Equal(t, "vault-jwt", cfg.JWT.Secret)
	assert.Equal(t, "keep-me", cfg.Database.Password)
	assert.Equal(t, "redis-pw", cfg.Cache.Password)
	assert.Equal(t, "dw.example:1433/econ", cfg.DataWarehouse.URL)
	assert.Equal(t, "reader", cfg.DataWarehouse.User)
}

func TestApplySecrets_MissingJWTSecret(t *testing.T) {
	err := applySecrets(context.Background(), &Config{}, mapSource{})
	assert.Error(t, err)
}
