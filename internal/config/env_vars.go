package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	apiBaseURLVar = "API_BASE_URL"
	originURLVar  = "ORIGIN_URL"
	folderEnvVar  = "DATA_FOLDER"
	proxyPortVar  = "PROXY_PORT"
	redisAddrVar  = "REDIS_ADDR"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Chronicle")
}

// GetAPIBaseURL returns the REST API root every resource path is resolved against
// (e.g., "https://api.chronicle.example.com")
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8000"), "/")
}

// GetOriginURL returns the site the offline proxy fronts (static assets and pages).
func (EnvVars) GetOriginURL() string {
	return strings.TrimRight(GetEnv(originURLVar, "http://localhost:5173"), "/")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetProxyPort() string {
	port := GetEnv(proxyPortVar, "8090")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetRedisAddr is empty unless cache groups should live in redis.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses a Go duration ("10s", "5m") and falls back to defaultValue
// when the variable is unset or malformed.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
