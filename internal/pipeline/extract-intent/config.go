// internal/pipeline/extract-intent/config.go
package extractintent

import "time"

type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	Temperature     float32
	MaxOutputTokens int32
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         8 * time.Second,
		MaxRetries:      1,
		Temperature:     0.3,
		MaxOutputTokens: 150,
	}
}
