package sessions_test

import (
	"testing"

	"github.com/jrsteele09/go-cms-client/internal/utils"
	"github.com/jrsteele09/go-cms-client/sessions"
	"github.com/jrsteele09/go-cms-client/storage"
	"github.com/jrsteele09/go-cms-client/storage/repofake"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserID    = "user-1"
	testUserEmail = "a@b.com"
)

func testUser() users.User {
	return users.User{ID: testUserID, Email: testUserEmail, Username: "ada"}
}

func TestStore_Set(t *testing.T) {
	st := repofake.NewFakeStore()
	s := sessions.NewStore(st)
	require.False(t, s.IsAuthenticated())

	require.NoError(t, s.Set(testUser(), "access-1", "refresh-1"))
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "access-1", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())
	require.Equal(t, testUserID, s.UserID())

	v, ok, _ := st.Get(storage.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", v)
	v, ok, _ = st.Get(storage.KeyRefreshToken)
	require.True(t, ok)
	require.Equal(t, "refresh-1", v)
	v, ok, _ = st.Get(storage.KeyUser)
	require.True(t, ok)
	require.Contains(t, v, testUserEmail)
}

func TestStore_Restore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		st := repofake.NewFakeStore()
		require.NoError(t, sessions.NewStore(st).Set(testUser(), "access-1", "refresh-1"))

		restored := sessions.NewStore(st)
		require.NoError(t, restored.Restore())
		require.True(t, restored.IsAuthenticated())
		require.Equal(t, testUserEmail, restored.User().Email)
		require.Equal(t, "refresh-1", restored.Token().RefreshToken)
	})

	t.Run("corrupt user is dropped", func(t *testing.T) {
		st := repofake.NewFakeStore()
		require.NoError(t, st.Set(storage.KeyAccessToken, "access-1"))
		require.NoError(t, st.Set(storage.KeyUser, "{not json"))

		s := sessions.NewStore(st)
		require.NoError(t, s.Restore())
		require.Nil(t, s.User())
		require.Equal(t, "access-1", s.AccessToken())
		require.False(t, s.IsAuthenticated())

		_, ok, _ := st.Get(storage.KeyUser)
		require.False(t, ok)
	})

	t.Run("empty storage", func(t *testing.T) {
		s := sessions.NewStore(repofake.NewFakeStore())
		require.NoError(t, s.Restore())
		require.Nil(t, s.Token())
		require.False(t, s.IsAuthenticated())
	})
}

func TestStore_SetAccessToken(t *testing.T) {
	st := repofake.NewFakeStore()
	s := sessions.NewStore(st)
	require.NoError(t, s.Set(testUser(), "access-1", "refresh-1"))

	require.NoError(t, s.SetAccessToken("access-2"))
	require.Equal(t, "access-2", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())
	v, _, _ := st.Get(storage.KeyAccessToken)
	require.Equal(t, "access-2", v)
}

func TestStore_UpdateUser(t *testing.T) {
	st := repofake.NewFakeStore()
	s := sessions.NewStore(st)
	require.NoError(t, s.UpdateUser(users.Update{Bio: utils.Ptr("ignored")}))
	require.Nil(t, s.User())

	require.NoError(t, s.Set(testUser(), "access-1", "refresh-1"))
	require.NoError(t, s.UpdateUser(users.Update{Bio: utils.Ptr("writer")}))
	require.Equal(t, "writer", s.User().Bio)

	v, _, _ := st.Get(storage.KeyUser)
	require.Contains(t, v, "writer")
}

func TestStore_Clear(t *testing.T) {
	st := repofake.NewFakeStore()
	s := sessions.NewStore(st)
	require.NoError(t, s.Set(testUser(), "access-1", "refresh-1"))
	require.NoError(t, st.Set(storage.KeyCurrentAccount, `{"id":"acc-1"}`))

	require.NoError(t, s.Clear())
	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
	require.Nil(t, s.User())

	// The tenant binding belongs to the tenant store.
	require.Equal(t, 1, st.Len())
}
