// internal/workers/tuition/calculate-tuition/config.go
package calculatetuition

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
