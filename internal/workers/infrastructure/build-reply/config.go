// internal/workers/infrastructure/build-reply/config.go
package buildreply

import "time"

type Config struct {
	Timeout      time.Duration
	RegistryPath string
	CacheTTL     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		RegistryPath: "configs/replies.json",
		CacheTTL:     5 * time.Minute,
	}
}
