// internal/workers/gpa/prompt-course-entry/config.go
package promptcourseentry

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
