package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultShutdownTimeout is how long in-flight requests get to finish.
const DefaultShutdownTimeout = 10 * time.Second

// ShutdownConfig bounds the graceful stop of every listener. A membership
// sync that is still running when it expires is cut off with its request.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultShutdownTimeout
	}
}

// String returns a string representation of the ShutdownConfig.
func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive: %v", c.Timeout)
	}
	return nil
}
