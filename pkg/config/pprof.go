package config

import (
	"fmt"
	"net"
	"strings"
)

// DefaultPProfAddr keeps the profiler on loopback unless configured otherwise.
const DefaultPProfAddr = "localhost:6060"

// PProfConfig enables the net/http/pprof listener next to the API.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) ApplyDefaults() {
	if c.Enabled && c.Addr == "" {
		c.Addr = DefaultPProfAddr
	}
}

// String returns a string representation of the pprof configuration.
func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	return b.String()
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof address %q must be host:port: %w", c.Addr, err)
	}
	return nil
}
