package worker

import (
	"fmt"
	"time"
)

// Config holds the configuration for the background task worker.
type Config struct {
	// Interval is how often each registered task runs.
	// Default: 15 minutes
	Interval time.Duration

	// TaskTimeout is the maximum time a single run is allowed.
	// Default: 1 minute
	TaskTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for running tasks.
	// Default: 30 seconds
	ShutdownTimeout time.Duration

	// RunOnStart runs every task once immediately instead of waiting a full
	// interval after startup.
	RunOnStart bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Interval:        15 * time.Minute,
		TaskTimeout:     time.Minute,
		ShutdownTimeout: 30 * time.Second,
		RunOnStart:      true,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Interval < 1*time.Second {
		return fmt.Errorf("interval must be at least 1 second, got %v", c.Interval)
	}
	if c.TaskTimeout < 1*time.Second {
		return fmt.Errorf("task timeout must be at least 1 second, got %v", c.TaskTimeout)
	}
	if c.TaskTimeout > c.Interval {
		return fmt.Errorf("task timeout (%v) must not exceed the interval (%v)", c.TaskTimeout, c.Interval)
	}
	if c.ShutdownTimeout < 1*time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	}
	return nil
}
