package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name LoadEnv looks at.
const EnvPrefix = "HTTPFRONT_"

// Load reads a YAML file and merges it onto the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}

		return nil, err
	}

	if err = yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadEnv loads the .env files (if any; missing files are ignored) into the process
// environment and applies HTTPFRONT_* overrides onto the config. It reports whether any
// override was applied.
func LoadEnv(cfg *Config, dotenv ...string) (bool, error) {
	for _, file := range dotenv {
		_ = godotenv.Load(file)
	}

	var used bool

	durations := map[string]*time.Duration{
		"READ_TIMEOUT":    &cfg.NET.ReadTimeout,
		"REQUEST_TIMEOUT": &cfg.NET.RequestTimeout,
		"WRITE_TIMEOUT":   &cfg.NET.WriteTimeout,
	}

	for name, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}

		d, err := time.ParseDuration(v)
		if err != nil {
			return used, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}

		*dst, used = d, true
	}

	ints := map[string]*int{
		"MAX_REQUEST_LINE": &cfg.URI.RequestLineSize.Maximal,
		"MAX_HEADERS":      &cfg.Headers.Number.Maximal,
		"MAX_HEADER_LINE":  &cfg.Headers.LineSize.Maximal,
		"CONN_BURST":       &cfg.NET.ConnBurst,
	}

	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return used, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}

		*dst, used = n, true
	}

	if v, ok := os.LookupEnv(EnvPrefix + "CONN_RATE"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return used, fmt.Errorf("%sCONN_RATE: %w", EnvPrefix, err)
		}

		cfg.NET.ConnRate, used = rate, true
	}

	return used, cfg.Validate()
}

// Validate rejects configurations which would make every request fail.
func (c *Config) Validate() error {
	switch {
	case c.URI.RequestLineSize.Maximal < len("GET / HTTP/1.1"):
		return fmt.Errorf("uri.request_line_size.maximal is too small: %d", c.URI.RequestLineSize.Maximal)
	case c.Headers.Number.Maximal < 0:
		return fmt.Errorf("headers.number.maximal must not be negative: %d", c.Headers.Number.Maximal)
	case c.Headers.LineSize.Maximal <= 0:
		return fmt.Errorf("headers.line_size.maximal must be positive: %d", c.Headers.LineSize.Maximal)
	case c.NET.ReadTimeout < 0 || c.NET.RequestTimeout < 0 || c.NET.WriteTimeout < 0:
		return fmt.Errorf("timeouts must not be negative")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return fmt.Errorf("net.accept_loop_interrupt_period must be positive: %s", c.NET.AcceptLoopInterruptPeriod)
	case c.NET.ConnRate < 0:
		return fmt.Errorf("net.conn_rate must not be negative: %f", c.NET.ConnRate)
	}

	return nil
}
