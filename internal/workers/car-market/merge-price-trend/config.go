// internal/workers/car-market/merge-price-trend/config.go
package mergepricetrend

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
