// Package config provides configuration loading and validation for the
// login gateway.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the gateway's configuration.
type Config struct {
	Login   LoginServerSettings `yaml:"login"`
	World   WorldServerSettings `yaml:"world"`
	Realms  RealmSettings       `yaml:"realms"`
	Logging LoggingSettings     `yaml:"logging"`
}

// LoginServerSettings configures the SRP login listener.
type LoginServerSettings struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// WorldServerSettings configures the post-auth world listener that issues
// the encryption-seed handshake.
type WorldServerSettings struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// RealmSettings bounds the number of realms the Realm Directory generates
// per REALM_LIST reply.
type RealmSettings struct {
	CountMin int `yaml:"count_min"`
	CountMax int `yaml:"count_max"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration matching the gateway's well-known legacy
// ports and the Login Server's default realm count bounds.
func Default() *Config {
	return &Config{
		Login: LoginServerSettings{Address: "127.0.0.1", Port: 3724},
		World: WorldServerSettings{Address: "127.0.0.1", Port: 8999},
		Realms: RealmSettings{
			CountMin: 0,
			CountMax: 10,
		},
		Logging: LoggingSettings{Level: "info", Format: "json"},
	}
}

// validate performs basic validation on the configuration. Detailed
// field-level checks are in validate.go.
func (c *Config) validate() error {
	if c.Login.Port <= 0 || c.Login.Port > 65535 {
		return fmt.Errorf("login.port must be between 1 and 65535")
	}
	if c.World.Port <= 0 || c.World.Port > 65535 {
		return fmt.Errorf("world.port must be between 1 and 65535")
	}
	if c.Realms.CountMin < 0 {
		return fmt.Errorf("realms.count_min must be non-negative")
	}
	if c.Realms.CountMax < c.Realms.CountMin {
		return fmt.Errorf("realms.count_max must be >= realms.count_min")
	}
	return c.validateLogging()
}
