// internal/workers/gpa/validate-gpa-form/config.go
package validategpaform

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
