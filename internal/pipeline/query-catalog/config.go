package querycatalog

import "time"

const DefaultPageLimit = 10

type Config struct {
	Timeout      time.Duration
	MaxPageLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		MaxPageLimit: 100,
	}
}
