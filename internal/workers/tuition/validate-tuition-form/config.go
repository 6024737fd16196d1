// internal/workers/tuition/validate-tuition-form/config.go
package validatetuitionform

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
