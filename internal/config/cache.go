package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CacheConfig defines settings for the response cache middleware.  When
// Enabled is false or no Redis client is available, caching is a no-op.
// Methods is a comma separated list (GET,HEAD); MethodSet is derived from it.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"CACHE_ENABLED"`
	Methods      string        `mapstructure:"CACHE_METHODS"`
	TTL          time.Duration `mapstructure:"CACHE_TTL"`
	KeyStrategy  string        `mapstructure:"CACHE_KEY_STRATEGY"`
	Prefix       string        `mapstructure:"CACHE_PREFIX"`
	MaxBodyBytes int           `mapstructure:"CACHE_MAX_BODY_BYTES"`

	MethodSet map[string]bool `mapstructure:"-"`
}

func setCacheDefaults(v *viper.Viper) {
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_METHODS", "GET")
	v.SetDefault("CACHE_TTL", 30*time.Second)
	v.SetDefault("CACHE_KEY_STRATEGY", "route_query")
	v.SetDefault("CACHE_PREFIX", "cache")
	v.SetDefault("CACHE_MAX_BODY_BYTES", 1<<20)
}

func (c *CacheConfig) normalize() {
	c.MethodSet = parseMethods(c.Methods)
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
