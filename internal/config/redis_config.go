package config

import "github.com/spf13/viper"

const (
	keyRedisAddr     = "redis.addr"
	keyRedisPassword = "redis.password"
	keyRedisDB       = "redis.db"
	keyRedisChannel  = "redis.channel"
	keyRedisPrefix   = "redis.prefix"
)

type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisChannel() string
	GetRedisKeyPrefix() string
}

type Redis struct {
	v *viper.Viper
}

var _ RedisConfig = Redis{}

func (r Redis) GetRedisAddr() string {
	return r.v.GetString(keyRedisAddr)
}

func (r Redis) GetRedisPassword() string {
	return r.v.GetString(keyRedisPassword)
}

func (r Redis) GetRedisDB() int {
	return r.v.GetInt(keyRedisDB)
}

// GetRedisChannel is the pub/sub channel session changes are relayed on.
func (r Redis) GetRedisChannel() string {
	return r.v.GetString(keyRedisChannel)
}

func (r Redis) GetRedisKeyPrefix() string {
	return r.v.GetString(keyRedisPrefix)
}
