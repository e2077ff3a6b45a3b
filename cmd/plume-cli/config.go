package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plume-protocol/plume-go/pkg/client"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// FileConfig is the YAML configuration file schema.
//
//	host: broker.local
//	port: 4222
//	name: kitchen-panel
//	log_file: /var/log/plume/session.plog
//	keepalive_interval: 30s
//	connect_timeout: 10s
type FileConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	Name              string   `yaml:"name"`
	LogFile           string   `yaml:"log_file"`
	KeepAliveInterval Duration `yaml:"keepalive_interval"`
	ConnectTimeout    Duration `yaml:"connect_timeout"`
	ReadTimeout       Duration `yaml:"read_timeout"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// clientConfig translates the file values into a client configuration.
// Zero values keep the library defaults.
func (c *FileConfig) clientConfig() client.Config {
	cfg := client.DefaultConfig()
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	cfg.Name = c.Name
	cfg.ConnectTimeout = c.ConnectTimeout.Std()
	cfg.ReadTimeout = c.ReadTimeout.Std()
	if c.KeepAliveInterval > 0 {
		cfg.KeepAlive = client.KeepAliveConfig{PingInterval: c.KeepAliveInterval.Std()}
	}
	return cfg
}
