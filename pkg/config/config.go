// Copyright 2024 The livechat-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for livechat-go:
// listen addresses, the token secret, and the dispatch tuning knobs.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// ServerConfig holds the process-wide settings.
type ServerConfig struct {
	// ListenAddr is the websocket listen address.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	// MetricsAddr is the Prometheus /metrics listen address.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
	// AdminAddr is the admin API listen address.
	AdminAddr string `yaml:"admin_addr" json:"admin_addr"`
	// AuthSecret is the HMAC secret used to verify bearer tokens.
	AuthSecret string `yaml:"auth_secret" json:"auth_secret"`
	// RematchIntervalSec is the period of the waiting-queue re-matching
	// pass, in seconds.
	RematchIntervalSec int `yaml:"rematch_interval_sec" json:"rematch_interval_sec"`
	// MailboxSize is the capacity of every actor mailbox.
	MailboxSize int `yaml:"mailbox_size" json:"mailbox_size"`
	// WaitingQueueSize is the capacity of the waiting-customer queue.
	WaitingQueueSize int `yaml:"waiting_queue_size" json:"waiting_queue_size"`
}

// Config holds the complete configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
}

// RematchInterval returns the re-matching period as a duration.
func (c *Config) RematchInterval() time.Duration {
	return time.Duration(c.Server.RematchIntervalSec) * time.Second
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ":9001",
			MetricsAddr:        ":8082",
			AdminAddr:          ":8083",
			AuthSecret:         "aoquoquoeq",
			RematchIntervalSec: 10,
			MailboxSize:        100,
			WaitingQueueSize:   100,
		},
	}
}

// LoadConfig loads configuration from a file. An empty path yields the
// default configuration.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		log.Println("[INFO] No config file specified, using default configuration")
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(configPath))

	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the dispatch loop cannot run with.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.Server.AuthSecret == "" {
		return fmt.Errorf("auth_secret must not be empty")
	}
	if c.Server.RematchIntervalSec <= 0 {
		return fmt.Errorf("rematch_interval_sec must be positive, got %d", c.Server.RematchIntervalSec)
	}
	if c.Server.MailboxSize <= 0 {
		return fmt.Errorf("mailbox_size must be positive, got %d", c.Server.MailboxSize)
	}
	if c.Server.WaitingQueueSize <= 0 {
		return fmt.Errorf("waiting_queue_size must be positive, got %d", c.Server.WaitingQueueSize)
	}
	return nil
}
