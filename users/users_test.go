package users_test

import (
	"testing"

	"github.com/jrsteele09/go-cms-client/internal/utils"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/stretchr/testify/require"
)

func TestRoleType(t *testing.T) {
	require.True(t, users.RoleEditor.Valid())
	require.False(t, users.RoleType("owner").Valid())
	require.True(t, users.RoleAuthor.OneOf(users.RoleAdmin, users.RoleAuthor))
	require.False(t, users.RoleViewer.OneOf(users.RoleAdmin, users.RoleEditor))
}

func TestUser_Merge(t *testing.T) {
	u := users.User{ID: "u1", Email: "a@b.com", FirstName: "Ada", Bio: "old"}
	u.Merge(users.Update{Bio: utils.Ptr("new"), MarketingEmails: utils.Ptr(true)})

	require.Equal(t, "Ada", u.FirstName)
	require.Equal(t, "new", u.Bio)
	require.True(t, u.MarketingEmails)
}

func TestUser_DisplayName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", (&users.User{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	require.Equal(t, "ada", (&users.User{Username: "ada", Email: "a@b.com"}).DisplayName())
	require.Equal(t, "a@b.com", (&users.User{Email: "a@b.com"}).DisplayName())
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Sh0rt", "at least 8 characters"},
		{"alllowercase1", "uppercase"},
		{"ALLUPPERCASE1", "lowercase"},
		{"NoNumbersHere", "number"},
		{"Secret123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
