package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "ctx %s", "x"))
	})

	t.Run("keeps the chain", func(t *testing.T) {
		err := apperrors.Wrapf(apperrors.ErrSessionExpired, "refresh for %s", "user-1")
		require.EqualError(t, err, "refresh for user-1: session expired")
		require.True(t, apperrors.Is(err, apperrors.ErrSessionExpired))
	})

	t.Run("as", func(t *testing.T) {
		type codeErr struct{ error }
		err := fmt.Errorf("outer: %w", codeErr{apperrors.ErrOffline})
		var target codeErr
		require.True(t, apperrors.As(err, &target))
	})
}
