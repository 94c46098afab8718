package main

import (
	"testing"

	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	cmd := rootCmd(config.New())
	for _, path := range [][]string{
		{"login"}, {"logout"}, {"whoami"},
		{"accounts", "list"}, {"accounts", "switch"}, {"accounts", "update"},
		{"articles", "list"}, {"articles", "get"},
		{"proxy"}, {"cache", "size"}, {"cache", "clear"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		require.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, configureLogging("PROD", "warn"))
	require.Error(t, configureLogging("PROD", "loud"))
}
