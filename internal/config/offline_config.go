package config

import (
	"fmt"
	"time"
)

type OfflineConfig interface {
	GetCacheVersion() string
	GetCacheName() string
	GetStaticCacheName() string
	GetAPICacheName() string
	GetStaticAssets() []string
	GetAPIPrefixes() []string
	GetAPIHost() string
	GetAPIRetention() time.Duration
	GetCacheSizeTimeout() time.Duration
	GetCleanupSchedule() string
	GetSyncSchedule() string
}

type Offline struct{}

var _ OfflineConfig = Offline{}

func (Offline) GetCacheVersion() string {
	return GetEnv("CACHE_VERSION", "v1.0.0")
}

func (o Offline) GetCacheName() string {
	return fmt.Sprintf("chronicle-%s", o.GetCacheVersion())
}

func (o Offline) GetStaticCacheName() string {
	return fmt.Sprintf("chronicle-static-%s", o.GetCacheVersion())
}

func (o Offline) GetAPICacheName() string {
	return fmt.Sprintf("chronicle-api-%s", o.GetCacheVersion())
}

// GetStaticAssets is the manifest pre-cached on install.
func (Offline) GetStaticAssets() []string {
	return []string{"/", "/favicon.ico", "/manifest.json"}
}

func (Offline) GetAPIPrefixes() []string {
	return []string{"/articles/", "/topics/", "/pages/", "/analytics/", "/seo/"}
}

func (Offline) GetAPIHost() string {
	return GetEnv("API_HOST", "localhost")
}

func (Offline) GetAPIRetention() time.Duration {
	return 24 * time.Hour
}

func (Offline) GetCacheSizeTimeout() time.Duration {
	return 5 * time.Second
}

func (Offline) GetCleanupSchedule() string {
	return GetEnv("CACHE_CLEANUP_SCHEDULE", "@every 1h")
}

func (Offline) GetSyncSchedule() string {
	return GetEnv("BACKGROUND_SYNC_SCHEDULE", "@every 5m")
}
