package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/unraid/api-oidc-state/internal/config"
)

func TestState_Defaults(t *testing.T) {
	t.Setenv("STATE_TTL_SECONDS", "")
	t.Setenv("STATE_SWEEP_INTERVAL_SECONDS", "")

	c := config.New()
	require.Equal(t, 600*time.Second, c.GetStateTTL())
	require.Equal(t, 60*time.Second, c.GetStateSweepInterval())
	require.Equal(t, 32, c.GetStateSecretLength())
	require.Equal(t, 16, c.GetNonceLength())
}

func TestState_FromEnv(t *testing.T) {
	t.Setenv("STATE_TTL_SECONDS", "120")
	t.Setenv("STATE_SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("STATE_SECRET_BYTES", "64")
	t.Setenv("STATE_NONCE_BYTES", "24")

	c := config.New()
	require.Equal(t, 2*time.Minute, c.GetStateTTL())
	require.Equal(t, 5*time.Second, c.GetStateSweepInterval())
	require.Equal(t, 64, c.GetStateSecretLength())
	require.Equal(t, 24, c.GetNonceLength())
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset", value: "", want: 7},
		{name: "valid", value: "42", want: 42},
		{name: "padded", value: " 42 ", want: 42},
		{name: "garbage", value: "ten", want: 7},
		{name: "zero", value: "0", want: 7},
		{name: "negative", value: "-5", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VALUE", tt.value)
			require.Equal(t, tt.want, config.GetEnvInt("TEST_INT_VALUE", 7))
		})
	}
}

func TestEnvVars_GetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	require.Equal(t, zerolog.DebugLevel, config.New().GetLogLevel())

	t.Setenv("LOG_LEVEL", "loud")
	require.Equal(t, zerolog.InfoLevel, config.New().GetLogLevel())

	t.Setenv("LOG_LEVEL", "")
	require.Equal(t, zerolog.InfoLevel, config.New().GetLogLevel())
}

func TestStaticState(t *testing.T) {
	var zero config.StaticState
	require.Equal(t, 600*time.Second, zero.GetStateTTL())
	require.Equal(t, time.Minute, zero.GetStateSweepInterval())
	require.Equal(t, config.DefaultSecretLength, zero.GetStateSecretLength())
	require.Equal(t, config.DefaultNonceLength, zero.GetNonceLength())

	custom := config.StaticState{TTL: time.Second, SweepInterval: time.Millisecond, SecretLength: 48, NonceLength: 20}
	require.Equal(t, time.Second, custom.GetStateTTL())
	require.Equal(t, time.Millisecond, custom.GetStateSweepInterval())
	require.Equal(t, 48, custom.GetStateSecretLength())
	require.Equal(t, 20, custom.GetNonceLength())
}
