/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package web

import (
	"net"
	"strconv"
	"time"

	"dirpx.dev/boot/apis"
)

// Prefix is the configuration prefix read by the starter.
const Prefix = "web"

// Config is the web server configuration.
type Config struct {
	Binding         string        `mapstructure:"binding"`
	Port            int           `mapstructure:"port" validate:"min=0,max=65535"`
	Graceful        bool          `mapstructure:"graceful"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// ConfigPrefix implements apis.Configurable.
func (Config) ConfigPrefix() string { return Prefix }

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Binding, strconv.Itoa(c.Port))
}

// DefaultConfig returns the configuration used for absent keys.
func DefaultConfig() Config {
	return Config{
		Binding:         "0.0.0.0",
		Port:            8080,
		Graceful:        true,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		Metrics:         MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// loadConfig overlays the configured keys on the defaults.
func loadConfig(cfg apis.ConfigRegistry) (Config, error) {
	c := DefaultConfig()
	if cfg == nil || !cfg.Has(Prefix) {
		return c, nil
	}
	if err := cfg.Unmarshal(Prefix, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
