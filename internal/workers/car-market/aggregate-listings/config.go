// internal/workers/car-market/aggregate-listings/config.go
package aggregatelistings

import "time"

type Config struct {
	Timeout     time.Duration
	SampleLimit int
	// Deterministic makes every fallback sample draw from SampleSeed.
	Deterministic bool
	SampleSeed    int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		SampleLimit: 100,
	}
}
