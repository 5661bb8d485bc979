package config

import "fmt"

type CORSConfig struct {
	AllowedOrigin string `koanf:"allowedorigin"`
}

func (c *CORSConfig) Validate() error {
	if c.AllowedOrigin == "" {
		return fmt.Errorf("cors allowed origin is not configured")
	}
	return nil
}
