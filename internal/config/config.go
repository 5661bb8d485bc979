package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	CORS       config.CORSConfig       `koanf:"cors"`
	Auth       config.AuthConfig       `koanf:"auth"`
	Sync       SyncConfig              `koanf:"sync"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// SyncConfig bounds the collection updates the synchronizer runs at once.
// Zero means no limit.
type SyncConfig struct {
	Concurrency int `koanf:"concurrency"`
}

func (c *SyncConfig) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("sync concurrency must not be negative: %d", c.Concurrency)
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(fmt.Sprintf("  cors.allowedorigin: %s\n", c.CORS.AllowedOrigin))

	b.WriteString(c.Database.String())

	b.WriteString("\n--- gRPC Configuration ---\n")
	b.WriteString(fmt.Sprintf("  grpc.enabled: %t\n", c.GRPC.Enabled))
	b.WriteString(fmt.Sprintf("  grpc.port: %s\n", c.GRPC.Port))
	b.WriteString(fmt.Sprintf("  grpc.reflection_enabled: %t\n", c.GRPC.ReflectionEnabled))

	b.WriteString("\n--- Auth Configuration ---\n")
	b.WriteString(fmt.Sprintf("  auth.mode: %s\n", c.Auth.Mode))
	if c.Auth.Mode == config.AuthModeJWT {
		b.WriteString(fmt.Sprintf("  auth.idp.jwksurl: %s\n", c.Auth.IdP.JwksURL))
		b.WriteString(fmt.Sprintf("  auth.idp.issuer: %s\n", c.Auth.IdP.Issuer))
	}

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  sync.concurrency: %d\n", c.Sync.Concurrency))

	b.WriteString(c.Shutdown.String())
	b.WriteString(c.NATS.String())
	if c.NATS.Enabled {
		b.WriteString(c.Resilience.String())
	}
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())

	return b.String()
}

// applyDefaults fills the optional settings left out of config.yaml.
func (c *Config) applyDefaults() {
	c.HTTPServer.ApplyDefaults()
	c.PProf.ApplyDefaults()
	c.Shutdown.ApplyDefaults()
	if c.Auth.Mode == config.AuthModeJWT {
		c.Auth.IdP.ApplyDefaults()
	}
}

// Validate checks if the configuration values are valid. Defaults are applied first.
func (c *Config) Validate() error {
	c.applyDefaults()
	validators := []interface{ Validate() error }{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.CORS,
		&c.Auth,
		&c.Sync,
		&c.NATS,
		&c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	// the breaker only guards the event publisher
	if c.NATS.Enabled {
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	return nil
}
