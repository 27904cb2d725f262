package lox

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config controls the VM's tunables. Defaults match spec.md's defaults
// (256-slot stack, capacity-8 initial hash tables).
type Config struct {
	StackSize   int    `json:"stack_size,omitempty"`
	TableSize   int    `json:"table_size,omitempty"`
	Trace       bool   `json:"trace,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`
}

// DefaultConfig returns the zero-tuning configuration.
func DefaultConfig() *Config {
	return &Config{
		StackSize: 256,
		TableSize: 8,
	}
}

// WithStackSize sets the value-stack capacity.
func (c *Config) WithStackSize(n int) *Config { c.StackSize = n; return c }

// WithTableSize sets the starting capacity (rounded up to a power of
// two) of the VM's globals and string-intern tables.
func (c *Config) WithTableSize(n int) *Config { c.TableSize = n; return c }

// WithTrace toggles per-instruction tracing.
func (c *Config) WithTrace(on bool) *Config { c.Trace = on; return c }

// WithHistoryFile sets the REPL history file path.
func (c *Config) WithHistoryFile(path string) *Config { c.HistoryFile = path; return c }

// Validate rejects a Config that would misconfigure the VM.
func (c *Config) Validate() error {
	if c.StackSize <= 0 {
		return &LoxError{Code: ErrInvalidConfig, Message: "stack size must be positive"}
	}
	if c.TableSize < 0 {
		return &LoxError{Code: ErrInvalidConfig, Message: "table size must not be negative"}
	}
	return nil
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadConfigFile reads a hujson (JSON-with-comments) config file at path
// and merges it over DefaultConfig. A missing file is not an error; it
// just yields the defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, &LoxError{Code: ErrIO, Message: fmt.Sprintf("reading config %s", path), Cause: err}
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, &LoxError{Code: ErrInvalidConfig, Message: fmt.Sprintf("parsing config %s", path), Cause: err}
	}

	if err := json.Unmarshal(std, cfg); err != nil {
		return nil, &LoxError{Code: ErrInvalidConfig, Message: fmt.Sprintf("decoding config %s", path), Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
