package config

type Config interface {
	EnvConfig
	ClientConfig
	OfflineConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetOriginURL() string
	GetDataFolder() string
	GetProxyPort() string
	GetRedisAddr() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Client
	Offline
}

func New() Config {
	return mainConfig{}
}
