package monitor

import (
	"fmt"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/constants"
)

// MonitorConfig contains configuration for the poll loop
type MonitorConfig struct {
	// Interval between cycle starts
	Interval time.Duration

	// AlternateScreen takes over the terminal while running
	AlternateScreen bool
}

// Validate fills defaults and rejects intervals below the minimum
func (c *MonitorConfig) Validate() error {
	if c.Interval == 0 {
		c.Interval = constants.DefaultPollInterval
	}
	if c.Interval < constants.MinPollInterval {
		return fmt.Errorf("interval %s is below the minimum of %s", c.Interval, constants.MinPollInterval)
	}
	return nil
}
