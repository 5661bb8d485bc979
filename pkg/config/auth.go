package config

import "fmt"

const (
	AuthModeJWT    = "jwt"
	AuthModeHeader = "header"
)

// AuthConfig selects how the caller of a request is identified.
// In jwt mode tokens are verified against IdP; in header mode the
// X-User-Id header set by the gateway is trusted.
type AuthConfig struct {
	Mode string `koanf:"mode"`
	IdP  IdP    `koanf:"idp"`
}

func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case AuthModeJWT:
		return c.IdP.Validate()
	case AuthModeHeader:
		return nil
	default:
		return fmt.Errorf("unsupported auth mode %q", c.Mode)
	}
}
