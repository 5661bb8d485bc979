package config

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultJWKSMinInterval bounds how often the key set is fetched again.
const DefaultJWKSMinInterval = 5 * time.Minute

// IdP points at the identity provider whose tokens the catalog accepts in jwt auth mode.
type IdP struct {
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	MinInterval time.Duration `koanf:"mininterval"`
}

func (c *IdP) ApplyDefaults() {
	if c.MinInterval == 0 {
		c.MinInterval = DefaultJWKSMinInterval
	}
}

func (c *IdP) Validate() error {
	u, err := url.Parse(c.JwksURL)
	if c.JwksURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("IdP JWKS URL must be an absolute http(s) URL: %q", c.JwksURL)
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP issuer cannot be empty")
	}
	if c.ClientID == "" {
		return fmt.Errorf("IdP client ID cannot be empty")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP minimum interval must be greater than zero")
	}
	return nil
}
