// internal/pipeline/parse-intent/config.go
package parseintent

type Config struct {
	// MaxInputBytes bounds the raw text accepted from the extractor.
	MaxInputBytes int
}

func LoadConfig() *Config {
	return &Config{
		MaxInputBytes: 4096,
	}
}
