// Package config loads table definitions from HCL.
//
//	log_level = "info"
//	seed      = 42
//
//	table "main" {
//	  seats          = 6
//	  small_blind    = 5
//	  big_blind      = 10
//	  start_chips    = 1000
//	  action_timeout = "30s"
//	  hands          = 100
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	DefaultSeats         = 6
	DefaultSmallBlind    = 5
	DefaultBigBlind      = 10
	DefaultStartChips    = 1000
	DefaultActionTimeout = 30 * time.Second
	DefaultHands         = 100
)

// Config is the complete file.
type Config struct {
	LogLevel string        `hcl:"log_level,optional"`
	Seed     int64         `hcl:"seed,optional"`
	Tables   []TableConfig `hcl:"table,block"`
}

// TableConfig defines one table.
type TableConfig struct {
	Name          string `hcl:"name,label"`
	Seats         int    `hcl:"seats,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	StartChips    int    `hcl:"start_chips,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
	Hands         int    `hcl:"hands,optional"`

	// Timeout is ActionTimeout parsed by Validate.
	Timeout time.Duration
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Tables: []TableConfig{{Name: "main"}}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates filename. A missing file yields Default.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source, applies defaults and validates the result.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if len(cfg.Tables) == 0 {
		cfg.Tables = []TableConfig{{Name: "main"}}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Seats == 0 {
			t.Seats = DefaultSeats
		}
		if t.BigBlind == 0 {
			t.BigBlind = DefaultBigBlind
			if t.SmallBlind == 0 {
				t.SmallBlind = DefaultSmallBlind
			}
		}
		if t.SmallBlind == 0 {
			t.SmallBlind = max(t.BigBlind/2, 1)
		}
		if t.StartChips == 0 {
			t.StartChips = t.BigBlind * 100
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = DefaultActionTimeout.String()
		}
		if t.Timeout == 0 {
			if d, err := time.ParseDuration(t.ActionTimeout); err == nil {
				t.Timeout = d
			}
		}
		if t.Hands == 0 {
			t.Hands = DefaultHands
		}
	}
}

// Validate checks every table.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	seen := make(map[string]bool, len(c.Tables))
	for i := range c.Tables {
		t := &c.Tables[i]
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined more than once", t.Name)
		}
		seen[t.Name] = true

		if t.Seats < 2 || t.Seats > 10 {
			return fmt.Errorf("table %s: seats must be between 2 and 10", t.Name)
		}
		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind < t.SmallBlind {
			return fmt.Errorf("table %s: big blind must be at least the small blind", t.Name)
		}
		if t.StartChips <= 0 {
			return fmt.Errorf("table %s: start chips must be positive", t.Name)
		}
		if t.Hands <= 0 {
			return fmt.Errorf("table %s: hands must be positive", t.Name)
		}
		d, err := time.ParseDuration(t.ActionTimeout)
		if err != nil {
			return fmt.Errorf("table %s: invalid action_timeout: %w", t.Name, err)
		}
		if d <= 0 {
			return fmt.Errorf("table %s: action_timeout must be positive", t.Name)
		}
		t.Timeout = d
	}
	return nil
}

// Table returns the table with the given name.
func (c *Config) Table(name string) (*TableConfig, bool) {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}
