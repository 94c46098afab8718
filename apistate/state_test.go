package apistate_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/stretchr/testify/require"
)

func respond[T any](data T) apistate.Call[T] {
	return func(context.Context) (*apiclient.Response[T], error) {
		return &apiclient.Response[T]{Data: data, Status: http.StatusOK}, nil
	}
}

func failWith[T any](err error) apistate.Call[T] {
	return func(context.Context) (*apiclient.Response[T], error) {
		return nil, err
	}
}

func record[T any](s *apistate.State[T]) *[]apistate.Snapshot[T] {
	var mu sync.Mutex
	seen := []apistate.Snapshot[T]{}
	s.Observe(func(snap apistate.Snapshot[T]) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, snap)
	})
	return &seen
}

func TestState_Success(t *testing.T) {
	rec := &notify.Recorder{}
	s := apistate.New[string](rec)
	seen := record(s)

	var loadingDuringCall bool
	got, err := s.Execute(context.Background(), func(ctx context.Context) (*apiclient.Response[string], error) {
		loadingDuringCall = s.Loading()
		return &apiclient.Response[string]{Data: "payload"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "payload", got)
	require.True(t, loadingDuringCall)

	snap := s.Snapshot()
	require.False(t, snap.Loading)
	require.Empty(t, snap.Error)
	require.True(t, snap.HasData)
	require.Equal(t, "payload", snap.Data)
	require.Zero(t, rec.Count())

	require.Len(t, *seen, 2)
	require.True(t, (*seen)[0].Loading)
	require.False(t, (*seen)[1].Loading)
}

func TestState_Failure(t *testing.T) {
	t.Run("api error keeps data", func(t *testing.T) {
		rec := &notify.Recorder{}
		s := apistate.New[string](rec)
		_, err := s.Execute(context.Background(), respond("first"))
		require.NoError(t, err)

		apiErr := &apiclient.APIError{Status: http.StatusBadRequest, Message: "Title is required"}
		_, err = s.Execute(context.Background(), failWith[string](apiErr))
		require.ErrorIs(t, err, apiErr)

		snap := s.Snapshot()
		require.False(t, snap.Loading)
		require.Equal(t, "Title is required", snap.Error)
		require.Equal(t, "first", snap.Data)

		require.Equal(t, 1, rec.Count())
		last, _ := rec.Last()
		require.Equal(t, notify.LevelError, last.Level)
		require.Equal(t, "Title is required", last.Text)
	})

	t.Run("error without message uses fallback", func(t *testing.T) {
		rec := &notify.Recorder{}
		s := apistate.New[int](rec)
		_, err := s.Execute(context.Background(), failWith[int](&apiclient.APIError{Status: http.StatusInternalServerError}))
		require.Error(t, err)
		require.Equal(t, apiclient.DefaultErrorMessage, s.Err())
		require.Equal(t, 1, rec.Count())
	})

	t.Run("error is cleared by the next call", func(t *testing.T) {
		s := apistate.New[int](&notify.Recorder{})
		_, _ = s.Execute(context.Background(), failWith[int](errors.New("boom")))
		require.Equal(t, "boom", s.Err())
		_, err := s.Execute(context.Background(), respond(7))
		require.NoError(t, err)
		require.Empty(t, s.Err())
	})

	t.Run("panic", func(t *testing.T) {
		rec := &notify.Recorder{}
		s := apistate.New[int](rec)
		_, err := s.Execute(context.Background(), func(context.Context) (*apiclient.Response[int], error) {
			panic("nil map")
		})
		require.Error(t, err)
		require.False(t, s.Loading())
		require.NotEmpty(t, s.Err())
		require.Equal(t, 1, rec.Count())
	})
}

func TestState_Reset(t *testing.T) {
	for name, call := range map[string]apistate.Call[string]{
		"after success": respond("x"),
		"after failure": failWith[string](errors.New("boom")),
	} {
		t.Run(name, func(t *testing.T) {
			s := apistate.New[string](&notify.Recorder{})
			_, _ = s.Execute(context.Background(), call)
			s.Reset()
			require.Equal(t, apistate.Snapshot[string]{}, s.Snapshot())
			s.Reset()
			require.Equal(t, apistate.Snapshot[string]{}, s.Snapshot())
		})
	}
}

// Two calls on one State race: whichever settles last decides what is visible.
func TestState_LastWriteWins(t *testing.T) {
	s := apistate.New[string](&notify.Recorder{})
	release := make(chan struct{})
	started := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Execute(context.Background(), func(context.Context) (*apiclient.Response[string], error) {
			close(started)
			<-release
			return &apiclient.Response[string]{Data: "slow"}, nil
		})
	}()
	<-started

	_, err := s.Execute(context.Background(), respond("fast"))
	require.NoError(t, err)
	require.Equal(t, "fast", s.Snapshot().Data)
	require.False(t, s.Loading())

	close(release)
	<-done
	require.Equal(t, "slow", s.Snapshot().Data)
}

func TestState_Observe(t *testing.T) {
	s := apistate.New[int](&notify.Recorder{})
	count := 0
	cancel := s.Observe(func(apistate.Snapshot[int]) { count++ })
	_, _ = s.Execute(context.Background(), respond(1))
	require.Equal(t, 2, count)
	cancel()
	_, _ = s.Execute(context.Background(), respond(2))
	require.Equal(t, 2, count)
}
