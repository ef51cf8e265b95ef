package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "SELLOG"

type Config interface {
	EnvConfig
	SessionConfig
	GatewayConfig
	RedisConfig
}

type mainConfig struct {
	EnvVars
	Session
	Gateway
	Redis
}

// New builds a Config on top of v. Defaults are registered on v and every key can be
// overridden with a SELLOG_ prefixed environment variable (api.url -> SELLOG_API_URL).
func New(v *viper.Viper) Config {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return mainConfig{
		EnvVars: EnvVars{v: v},
		Session: Session{v: v},
		Gateway: Gateway{v: v},
		Redis:   Redis{v: v},
	}
}

// Load reads an optional config file before building the Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "[config Load] reading %s", file)
		}
	}
	return New(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, "sellog")
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyAPIURL, "http://localhost:8080")

	v.SetDefault(keyStorageKey, "accessToken")
	v.SetDefault(keyStoreBackend, StoreMemory)
	v.SetDefault(keySessionTTL, "12h")
	v.SetDefault(keyActivityDebounce, "2s")
	v.SetDefault(keyLoginRoute, "/login")

	v.SetDefault(keyRefreshThreshold, "5m")
	v.SetDefault(keyRequestTimeout, "15s")
	v.SetDefault(keyRefreshTimeout, "10s")
	v.SetDefault(keyRateLimit, 0.0)
	v.SetDefault(keyRateBurst, 5)

	v.SetDefault(keyRedisAddr, "localhost:6379")
	v.SetDefault(keyRedisPassword, "")
	v.SetDefault(keyRedisDB, 0)
	v.SetDefault(keyRedisChannel, "sellog:session")
	v.SetDefault(keyRedisPrefix, "sellog:")
}
