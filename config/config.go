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

// Package config loads the application configuration once and exposes it as
// an immutable, prefix-addressable Tree.
//
// Sources are merged in increasing precedence:
//
//  1. defaults given with WithDefaults
//  2. the base file <dir>/app.{yaml,yml,toml,json}
//  3. the profile file <dir>/app-<profile>.{yaml,yml,toml,json}
//  4. environment variables BOOT_<KEY> where dots become underscores
//     (BOOT_WEB_PORT overrides web.port)
//
// String values may reference the environment with ${NAME} or ${NAME:default}.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultDir is the directory searched for configuration files.
	DefaultDir = "config"
	// DefaultName is the base name of the configuration file.
	DefaultName = "app"
	// DefaultEnvPrefix prefixes environment overrides.
	DefaultEnvPrefix = "BOOT"
	// DefaultProfileEnv names the variable selecting the profile file.
	DefaultProfileEnv = "BOOT_ENV"
)

// Option is a functional option that mutates the loader settings.
type Option func(*options)

type options struct {
	dir        string
	name       string
	file       string
	envPrefix  string
	profile    string
	profileEnv string
	defaults   map[string]any
	envKeys    []string
}

func defaultOptions() options {
	return options{
		dir:        DefaultDir,
		name:       DefaultName,
		envPrefix:  DefaultEnvPrefix,
		profileEnv: DefaultProfileEnv,
	}
}

// WithDir sets the directory searched for configuration files.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithName sets the base file name (without extension).
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFile loads exactly this file instead of searching. A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix disables
// environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithProfile selects the profile file explicitly, taking precedence over the
// profile environment variable.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithDefaults sets default values by dotted key.
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

// WithEnvKeys declares keys that may be supplied only through the environment.
func WithEnvKeys(keys ...string) Option {
	return func(o *options) { o.envKeys = append(o.envKeys, keys...) }
}

// Load merges every source once and returns the resulting immutable Tree.
func Load(opts ...Option) (*Tree, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	for k, val := range o.defaults {
		v.SetDefault(k, val)
	}
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		for _, key := range o.envKeys {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("boot(config): bind env for %q: %w", key, err)
			}
		}
	}

	if o.file != "" {
		v.SetConfigFile(o.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("boot(config): read %s: %w", o.file, err)
		}
	} else if _, err := readOptional(v, o.dir, o.name, false); err != nil {
		return nil, err
	}

	profile := o.profile
	if profile == "" && o.profileEnv != "" {
		profile = os.Getenv(o.profileEnv)
	}
	if profile != "" {
		if _, err := readOptional(v, o.dir, o.name+"-"+profile, true); err != nil {
			return nil, err
		}
	}

	settings := make(map[string]any)
	for _, key := range v.AllKeys() {
		setPath(settings, key, interpolate(v.Get(key)))
	}
	return newTree(settings), nil
}

// readOptional reads (or merges) <dir>/<name>.* and tolerates its absence.
func readOptional(v *viper.Viper, dir, name string, merge bool) (bool, error) {
	src := viper.New()
	src.AddConfigPath(dir)
	src.SetConfigName(name)
	if err := src.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("boot(config): read %s/%s: %w", dir, name, err)
	}
	if !merge {
		v.SetConfigFile(src.ConfigFileUsed())
		if err := v.ReadInConfig(); err != nil {
			return false, fmt.Errorf("boot(config): read %s: %w", src.ConfigFileUsed(), err)
		}
		return true, nil
	}
	if err := v.MergeConfigMap(src.AllSettings()); err != nil {
		return false, fmt.Errorf("boot(config): merge %s: %w", src.ConfigFileUsed(), err)
	}
	return true, nil
}

// placeholder matches ${NAME} and ${NAME:default}.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// interpolate expands environment placeholders in string leaves.
func interpolate(val any) any {
	switch x := val.(type) {
	case string:
		if !strings.Contains(x, "${") {
			return x
		}
		return placeholder.ReplaceAllStringFunc(x, func(m string) string {
			sub := placeholder.FindStringSubmatch(m)
			if env, ok := os.LookupEnv(sub[1]); ok {
				return env
			}
			return sub[2]
		})
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = interpolate(e)
		}
		return out
	case []string:
		out := make([]string, len(x))
		for i, e := range x {
			out[i] = interpolate(e).(string)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = interpolate(e)
		}
		return out
	default:
		return val
	}
}
