package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-cms-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
	require.Equal(t, 0, utils.Value[int](nil))

	require.Nil(t, utils.NonZero(""))
	require.Equal(t, "name", *utils.NonZero("name"))

	dst := "old"
	utils.Assign(&dst, nil)
	require.Equal(t, "old", dst)
	utils.Assign(&dst, utils.Ptr("new"))
	require.Equal(t, "new", dst)
}
