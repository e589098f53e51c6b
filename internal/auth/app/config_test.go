package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTHCORE_ACCESS_SECRET", "access-secret")
	t.Setenv("AUTHCORE_REFRESH_SECRET", "refresh-secret")
	t.Setenv("HOUSEKEEPING_INTERVAL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "authcore", cfg.Issuer)
	require.Equal(t, "access-secret", cfg.AccessSecret)
	require.Equal(t, 30*time.Minute, cfg.HousekeepingInterval)
	require.False(t, cfg.OIDC.Enabled())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("AUTHCORE_ACCESS_SECRET", "")
	t.Setenv("AUTHCORE_REFRESH_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestOIDCConfigEnabled(t *testing.T) {
	full := OIDCConfig{
		ClientID:         "client",
		ClientSecret:     "pem-key",
		Issuer:           "https://idp.example",
		IntrospectionURL: "https://idp.example/introspect",
		UserInfoURL:      "https://idp.example/userinfo",
	}
	require.True(t, full.Enabled())

	partial := full
	partial.IntrospectionURL = ""
	require.False(t, partial.Enabled())
}
