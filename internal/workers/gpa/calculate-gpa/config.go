// internal/workers/gpa/calculate-gpa/config.go
package calculategpa

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
