package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	keyRefreshThreshold = "gateway.refresh_threshold"
	keyRequestTimeout   = "gateway.timeout"
	keyRefreshTimeout   = "gateway.refresh_timeout"
	keyRateLimit        = "gateway.rate_limit"
	keyRateBurst        = "gateway.rate_burst"
)

type GatewayConfig interface {
	GetRefreshThreshold() time.Duration
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
}

type Gateway struct {
	v *viper.Viper
}

var _ GatewayConfig = Gateway{}

// GetRefreshThreshold is how close to expiry a token must be before a mutating call
// refreshes it up front.
func (g Gateway) GetRefreshThreshold() time.Duration {
	return g.v.GetDuration(keyRefreshThreshold)
}

func (g Gateway) GetRequestTimeout() time.Duration {
	return g.v.GetDuration(keyRequestTimeout)
}

func (g Gateway) GetRefreshTimeout() time.Duration {
	return g.v.GetDuration(keyRefreshTimeout)
}

// GetRateLimit is requests per second; zero disables client-side limiting.
func (g Gateway) GetRateLimit() float64 {
	return g.v.GetFloat64(keyRateLimit)
}

func (g Gateway) GetRateBurst() int {
	return g.v.GetInt(keyRateBurst)
}
