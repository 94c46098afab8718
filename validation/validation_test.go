package validation_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/validation"
	"github.com/stretchr/testify/require"
)

func TestLoginSchema(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := validation.LoginSchema().Validate(map[string]string{"email": "a@b.com", "password": "secret"})
		require.Empty(t, errs)
		require.NoError(t, errs.Err())
	})

	t.Run("invalid", func(t *testing.T) {
		errs := validation.LoginSchema().Validate(map[string]string{"email": "nope", "password": ""})
		require.Equal(t, []string{"Please enter a valid email address"}, errs["email"])
		require.Equal(t, []string{validation.RequiredMessage, "Must be at least 6 characters"}, errs["password"])

		err := errs.Err()
		require.ErrorIs(t, err, apperrors.ErrValidation)
		require.Contains(t, err.Error(), "email: Please enter a valid email address")
	})
}

func TestRegisterSchema(t *testing.T) {
	values := map[string]string{
		"first_name":       "Ada",
		"last_name":        "Lovelace",
		"email":            "ada@example.com",
		"password":         "Password1",
		"password_confirm": "Password2",
	}
	errs := validation.RegisterSchema(values["password"]).Validate(values)
	require.Len(t, errs, 1)
	require.Equal(t, []string{"Passwords do not match"}, errs["password_confirm"])
}

func TestArticleSchema(t *testing.T) {
	errs := validation.ArticleSchema().Validate(map[string]string{
		"title":   "Hi",
		"slug":    "Not A Slug",
		"content": "Long enough content",
	})
	require.Equal(t, []string{"Must be at least 3 characters"}, errs["title"])
	require.Contains(t, errs, "slug")
	require.NotContains(t, errs, "excerpt")
	require.NotContains(t, errs, "content")
}

func TestRules(t *testing.T) {
	require.True(t, validation.Username().Check("ada_99"))
	require.False(t, validation.Username().Check("ad"))
	require.True(t, validation.URL().Check("https://example.com/a?b=c"))
	require.False(t, validation.URL().Check("ftp://example.com"))
	require.True(t, validation.Optional(validation.URL()).Check(""))
	require.True(t, validation.MaxLength(3).Check("héé"))
}

func TestSanitize(t *testing.T) {
	got := validation.Sanitize("  <b>Hello</b>   World  ", validation.RemoveHTML, validation.NormalizeSpaces, validation.Trim)
	require.Equal(t, "Hello World", got)
	require.Equal(t, "save20", validation.Sanitize("SAVE20", validation.Lowercase))
}
