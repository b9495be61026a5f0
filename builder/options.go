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

package builder

import (
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/catalog"
	"dirpx.dev/boot/config"
)

// DefaultShutdownTimeout bounds how long Run waits for tasks after the
// shutdown signal or a task failure.
const DefaultShutdownTimeout = 10 * time.Second

// Option configures a Builder.
type Option func(*options)

type options struct {
	tree            *config.Tree
	configOptions   []config.Option
	logger          *zap.Logger
	services        *catalog.Catalog[apis.Installer]
	shutdownTimeout time.Duration
	signals         []os.Signal
}

func defaultOptions() options {
	return options{
		logger:          zap.NewNop(),
		services:        catalog.Services,
		shutdownTimeout: DefaultShutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// WithConfig uses tree instead of loading configuration.
func WithConfig(tree *config.Tree) Option {
	return func(o *options) { o.tree = tree }
}

// WithConfigOptions sets the options passed to config.Load.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) { o.configOptions = append(o.configOptions, opts...) }
}

// WithLogger sets the logger used until a logger starter replaces it.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithServices installs plugins from c instead of catalog.Services.
// A nil catalog disables plugin installation.
func WithServices(c *catalog.Catalog[apis.Installer]) Option {
	return func(o *options) { o.services = c }
}

// WithShutdownTimeout sets how long Run waits for tasks to return once
// their context is cancelled.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithSignals replaces the shutdown signals. No signals disables signal handling.
func WithSignals(sigs ...os.Signal) Option {
	return func(o *options) { o.signals = sigs }
}
