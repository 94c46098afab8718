package token_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentials struct {
	mu      sync.Mutex
	refresh string
	access  string
}

func (f *fakeCredentials) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeCredentials) SetAccessToken(accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = accessToken
	return nil
}

func (f *fakeCredentials) accessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func TestCoordinator_Refresh(t *testing.T) {
	t.Run("stores the new access token", func(t *testing.T) {
		creds := &fakeCredentials{refresh: "r1"}
		var sent string
		c := token.NewCoordinator(creds, func(_ context.Context, refreshToken string) (string, error) {
			sent = refreshToken
			return "a2", nil
		})

		got, err := c.Refresh(context.Background())
		require.NoError(t, err)
		require.Equal(t, "r1", sent)
		require.Equal(t, "a2", got)
		require.Equal(t, "a2", creds.accessToken())
	})

	t.Run("no refresh token ends the session", func(t *testing.T) {
		var failures int
		var calls int
		c := token.NewCoordinator(&fakeCredentials{}, func(context.Context, string) (string, error) {
			calls++
			return "", nil
		}, token.WithOnFailure(func(error) { failures++ }))

		_, err := c.Refresh(context.Background())
		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
		require.Equal(t, 1, failures)
		require.Zero(t, calls)
	})

	t.Run("refresh failure ends the session", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		var failures int
		c := token.NewCoordinator(&fakeCredentials{refresh: "r1"}, func(context.Context, string) (string, error) {
			return "", errors.New("refresh rejected")
		}, token.WithOnFailure(func(error) { failures++ }), token.WithRegisterer(reg))

		_, err := c.Refresh(context.Background())
		require.ErrorContains(t, err, "refresh rejected")
		require.Equal(t, 1, failures)

		count, err := testutil.GatherAndCount(reg, "cmsclient_token_refresh_total")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("empty access token is a failure", func(t *testing.T) {
		c := token.NewCoordinator(&fakeCredentials{refresh: "r1"}, func(context.Context, string) (string, error) {
			return "", nil
		})
		_, err := c.Refresh(context.Background())
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestCoordinator_CoalescesConcurrentRefreshes(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	c := token.NewCoordinator(&fakeCredentials{refresh: "r1"}, func(context.Context, string) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "a2", nil
	})

	const waiters = 8
	results := make(chan string, waiters)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tok, err := c.Refresh(context.Background())
		assert.NoError(t, err)
		results <- tok
	}()
	<-started

	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := c.Refresh(context.Background())
			assert.NoError(t, err)
			results <- tok
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	require.Equal(t, int32(1), calls.Load())
	for tok := range results {
		require.Equal(t, "a2", tok)
	}
}

func TestCoordinator_WaiterCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := token.NewCoordinator(&fakeCredentials{refresh: "r1"}, func(context.Context, string) (string, error) {
		<-release
		return "a2", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Refresh(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
