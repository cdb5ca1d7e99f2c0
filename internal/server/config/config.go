// Package config provides the postbox server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultAddress  = ":65432"
	defaultLogLevel = "NOTICE"
)

var defaultLogging = Logging{
	Disable: false,
	File:    "",
	Level:   defaultLogLevel,
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file; an empty string logs to stdout.
	File string

	// Level specifies the log level.
	Level string
}

func (l *Logging) validate() error {
	switch l.Level {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
		return nil
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", l.Level)
	}
}

// Debug holds tunables that rarely need changing.
type Debug struct {
	// FetchDeadline bounds how long a FetchNextMessage request may park its
	// connection waiting for a message, in milliseconds. 0 waits forever,
	// matching the reference behavior.
	FetchDeadline int
}

// FetchDeadlineDuration returns FetchDeadline as a time.Duration.
func (d *Debug) FetchDeadlineDuration() time.Duration {
	return time.Duration(d.FetchDeadline) * time.Millisecond
}

// Config is the top-level server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string

	Logging *Logging
	Debug   *Debug
}

// FixupAndValidate applies defaults and checks the configuration.
func (c *Config) FixupAndValidate() error {
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.Logging == nil {
		c.Logging = &defaultLogging
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Debug == nil {
		c.Debug = &Debug{}
	}
	if c.Debug.FetchDeadline < 0 {
		return fmt.Errorf("config: Debug: FetchDeadline %d is negative", c.Debug.FetchDeadline)
	}
	return c.Logging.validate()
}

// Load parses and validates a configuration from a byte buffer.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads and validates a configuration from a file. A missing path
// yields the defaults.
func LoadFile(f string) (*Config, error) {
	if f == "" {
		cfg := new(Config)
		if err := cfg.FixupAndValidate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
