package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	keyAppName  = "app.name"
	keyEnv      = "env"
	keyLogLevel = "log.level"
	keyAPIURL   = "api.url"
)

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIBaseURL() string
}

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(keyEnv)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.v.GetString(keyLogLevel))
}

// GetAPIBaseURL returns the REST backend root (e.g. "https://api.sellog.example").
// Trailing slashes are trimmed so endpoint paths can be appended directly.
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.v.GetString(keyAPIURL), "/")
}
