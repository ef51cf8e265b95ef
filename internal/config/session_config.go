package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const (
	keyStorageKey       = "session.key"
	keyStoreBackend     = "session.store"
	keySessionTTL       = "session.ttl"
	keyActivityDebounce = "session.activity_debounce"
	keyLoginRoute       = "session.login_route"
)

type SessionConfig interface {
	GetStorageKey() string
	GetStoreBackend() string
	GetSessionTTL() time.Duration
	GetActivityDebounce() time.Duration
	GetLoginRoute() string
}

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

// GetStorageKey is the single well-known key the access token lives under.
func (s Session) GetStorageKey() string {
	return s.v.GetString(keyStorageKey)
}

func (s Session) GetStoreBackend() string {
	switch b := s.v.GetString(keyStoreBackend); b {
	case StoreRedis:
		return b
	default:
		return StoreMemory
	}
}

// GetSessionTTL bounds how long a shared (redis) session outlives its last write.
func (s Session) GetSessionTTL() time.Duration {
	return s.v.GetDuration(keySessionTTL)
}

func (s Session) GetActivityDebounce() time.Duration {
	return s.v.GetDuration(keyActivityDebounce)
}

func (s Session) GetLoginRoute() string {
	return s.v.GetString(keyLoginRoute)
}
