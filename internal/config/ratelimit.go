package config

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig configures the token-bucket limiter.  Capacity tokens are
// available per key; RefillTokens are added every RefillInterval.  Keys are
// built from the client IP, the admin subject (if any) and the route,
// according to KeyStrategy.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"RATE_LIMIT_ENABLED"`
	Capacity       int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RefillTokens   int           `mapstructure:"RATE_LIMIT_REFILL_TOKENS"`
	RefillInterval time.Duration `mapstructure:"RATE_LIMIT_REFILL_INTERVAL"`
	TTL            time.Duration `mapstructure:"RATE_LIMIT_TTL"`
	KeyStrategy    string        `mapstructure:"RATE_LIMIT_KEY_STRATEGY"`
	Prefix         string        `mapstructure:"RATE_LIMIT_PREFIX"`
	Debug          bool          `mapstructure:"RATE_LIMIT_DEBUG"`
}

func setRateLimitDefaults(v *viper.Viper) {
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_CAPACITY", 60)
	v.SetDefault("RATE_LIMIT_REFILL_TOKENS", 1)
	v.SetDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second)
	v.SetDefault("RATE_LIMIT_TTL", 10*time.Minute)
	v.SetDefault("RATE_LIMIT_KEY_STRATEGY", "ip_route")
	v.SetDefault("RATE_LIMIT_PREFIX", "rl")
	v.SetDefault("RATE_LIMIT_DEBUG", false)
}

// normalize clamps nonsensical values.  The key TTL never drops below five
// refill intervals so a bucket cannot expire mid-refill.
func (c *RateLimitConfig) normalize() {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
}
