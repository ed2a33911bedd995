package oidcstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/unraid/api-oidc-state/internal/config"
	stateerrors "github.com/unraid/api-oidc-state/internal/errors"
	"github.com/unraid/api-oidc-state/oidcstate"
)

func TestService_SweepExpired(t *testing.T) {
	clock := newTestClock()
	svc := newTestService(t, oidcstate.NewInMemoryRepo(), clock)

	abandoned, err := svc.GenerateSecureState(testProviderID, "abandoned")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	fresh, err := svc.GenerateSecureState(testProviderID, "fresh")
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Millisecond)
	require.Equal(t, 1, svc.SweepExpired())
	require.Equal(t, 1, svc.Pending())
	require.Zero(t, svc.SweepExpired(), "sweeping twice is a no-op")

	require.False(t, svc.ValidateSecureState(abandoned, testProviderID).IsValid)
	result := svc.ValidateSecureState(fresh, testProviderID)
	require.True(t, result.IsValid)
	require.Equal(t, "fresh", result.ClientState)
}

func TestSweeper(t *testing.T) {
	t.Run("evicts on each tick", func(t *testing.T) {
		clock := newTestClock()
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), clock)
		for i := 0; i < 3; i++ {
			_, err := svc.GenerateSecureState(testProviderID, "abandoned")
			require.NoError(t, err)
		}
		clock.Advance(svc.TTL() + time.Second)

		sweeper := oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: 10 * time.Millisecond})
		sweeper.Start(context.Background())
		defer sweeper.Stop()

		require.Eventually(t, func() bool { return svc.Pending() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), newTestClock())
		sweeper := oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: time.Hour})

		sweeper.Stop()
		sweeper.Start(context.Background())
		sweeper.Start(context.Background())
		sweeper.Stop()
		sweeper.Stop()
	})

	t.Run("context cancellation ends the loop", func(t *testing.T) {
		clock := newTestClock()
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), clock)

		ctx, cancel := context.WithCancel(context.Background())
		sweeper := oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: 10 * time.Millisecond})
		sweeper.Start(ctx)
		cancel()
		sweeper.Stop()

		_, err := svc.GenerateSecureState(testProviderID, "kept")
		require.NoError(t, err)
		clock.Advance(svc.TTL() + time.Second)
		time.Sleep(30 * time.Millisecond)
		require.Equal(t, 1, svc.Pending())
	})

	t.Run("restart after stop", func(t *testing.T) {
		clock := newTestClock()
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), clock)
		sweeper := oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: 10 * time.Millisecond})
		sweeper.Start(context.Background())
		sweeper.Stop()

		_, err := svc.GenerateSecureState(testProviderID, "abandoned")
		require.NoError(t, err)
		clock.Advance(svc.TTL() + time.Second)

		sweeper.Start(context.Background())
		defer sweeper.Stop()
		require.Eventually(t, func() bool { return svc.Pending() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("start after context cancellation", func(t *testing.T) {
		clock := newTestClock()
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), clock)
		sweeper := oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: 10 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		sweeper.Start(ctx)
		require.True(t, sweeper.Running())
		cancel()
		require.Eventually(t, func() bool { return !sweeper.Running() }, time.Second, 5*time.Millisecond)

		sweeper.Start(context.Background())
		defer sweeper.Stop()
		require.True(t, sweeper.Running())

		_, err := svc.GenerateSecureState(testProviderID, "abandoned")
		require.NoError(t, err)
		clock.Advance(svc.TTL() + time.Second)
		require.Eventually(t, func() bool { return svc.Pending() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("interval from config", func(t *testing.T) {
		svc := newTestService(t, oidcstate.NewInMemoryRepo(), newTestClock())
		require.Equal(t, 3*time.Second, oidcstate.NewSweeper(svc, config.StaticState{SweepInterval: 3 * time.Second}).Interval())
		require.Equal(t, time.Minute, oidcstate.NewSweeper(svc, config.StaticState{}).Interval())
		require.Equal(t, time.Minute, oidcstate.NewSweeper(svc, nil).Interval())
	})
}

// startConfig is a full Config with fixed state values.
type startConfig struct {
	config.EnvVars
	config.StaticState
}

func TestStart(t *testing.T) {
	t.Run("builds service and sweeper from config", func(t *testing.T) {
		clock := newTestClock()
		cfg := startConfig{StaticState: config.StaticState{TTL: time.Minute, SweepInterval: 10 * time.Millisecond}}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc, sweeper, err := oidcstate.Start(ctx, cfg, oidcstate.NewInMemoryRepo(), oidcstate.WithNow(clock.Now), oidcstate.WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		defer sweeper.Stop()

		require.Equal(t, time.Minute, svc.TTL())
		require.Equal(t, 10*time.Millisecond, sweeper.Interval())
		require.True(t, sweeper.Running())

		state, err := svc.GenerateSecureState(testProviderID, testClientState)
		require.NoError(t, err)
		require.True(t, svc.ValidateSecureState(state, testProviderID).IsValid)

		_, err = svc.GenerateSecureState(testProviderID, "abandoned")
		require.NoError(t, err)
		clock.Advance(time.Minute + time.Second)
		require.Eventually(t, func() bool { return svc.Pending() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("environment config", func(t *testing.T) {
		t.Setenv("STATE_TTL_SECONDS", "90")
		t.Setenv("STATE_SWEEP_INTERVAL_SECONDS", "30")
		t.Setenv("ENV", "PROD")

		svc, sweeper, err := oidcstate.Start(context.Background(), config.New(), oidcstate.NewInMemoryRepo())
		require.NoError(t, err)
		defer sweeper.Stop()

		require.Equal(t, 90*time.Second, svc.TTL())
		require.Equal(t, 30*time.Second, sweeper.Interval())
	})

	t.Run("stops with the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		_, sweeper, err := oidcstate.Start(ctx, startConfig{}, oidcstate.NewInMemoryRepo(), oidcstate.WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		cancel()
		require.Eventually(t, func() bool { return !sweeper.Running() }, time.Second, 5*time.Millisecond)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, _, err := oidcstate.Start(context.Background(), nil, oidcstate.NewInMemoryRepo())
		require.ErrorIs(t, err, stateerrors.ErrInvalidParameter)

		_, _, err = oidcstate.Start(context.Background(), startConfig{}, nil)
		require.ErrorIs(t, err, stateerrors.ErrInvalidParameter)
	})
}
