// internal/workers/admission/apply-menu-selection/config.go
package applymenuselection

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
