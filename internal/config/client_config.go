package config

import "time"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetTokenPath() string
	GetRefreshPath() string
	GetRegisterPath() string
	GetAccountHeader() string
	GetLoginPath() string
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return GetDurationEnv("REQUEST_TIMEOUT", 10*time.Second)
}

func (Client) GetTokenPath() string {
	return "/auth/token/"
}

func (Client) GetRefreshPath() string {
	return "/auth/token/refresh/"
}

func (Client) GetRegisterPath() string {
	return "/register/"
}

// GetAccountHeader is the header carrying the selected tenant on every request.
func (Client) GetAccountHeader() string {
	return "X-Account-ID"
}

// GetLoginPath is where the client is sent once the session cannot be recovered.
func (Client) GetLoginPath() string {
	return "/login"
}
