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

// Package logger provides the starter that configures the application logger.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/registry"
)

// Prefix is the configuration prefix read by the starter.
const Prefix = "logger"

// Config is the logger configuration.
type Config struct {
	Level  zapcore.Level `mapstructure:"level"`
	Format string        `mapstructure:"format" validate:"omitempty,oneof=console json"`
	Color  bool          `mapstructure:"color"`
	// Output is stdout or stderr.
	Output string `mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// ConfigPrefix implements apis.Configurable.
func (Config) ConfigPrefix() string { return Prefix }

// DefaultConfig returns the configuration used when the prefix is absent.
func DefaultConfig() Config {
	return Config{Level: zapcore.InfoLevel, Format: "console", Color: true, Output: "stdout"}
}

// Option configures the starter.
type Option func(*Starter)

// WithWriter sends log output to w instead of the configured output.
func WithWriter(w io.Writer) Option {
	return func(s *Starter) { s.writer = w }
}

// New returns the logger starter.
func New(opts ...Option) *Starter {
	s := &Starter{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Starter builds a zap logger from configuration, makes it the builder
// logger and registers it as a component.
type Starter struct {
	writer io.Writer
	logger *zap.Logger
}

// Ensure Starter implements apis.LoggerStarter.
var _ apis.LoggerStarter = (*Starter)(nil)

// Name implements apis.Namer.
func (*Starter) Name() string { return "logger" }

// Logger builds the logger. It runs before every other starter.
func (s *Starter) Logger(_ context.Context, cfg apis.ConfigRegistry) (*zap.Logger, error) {
	c := DefaultConfig()
	if cfg != nil && cfg.Has(Prefix) {
		if err := cfg.Unmarshal(Prefix, &c); err != nil {
			return nil, err
		}
	}
	l, err := s.build(c)
	if err != nil {
		return nil, err
	}
	s.logger = l
	return l, nil
}

// Build registers the logger and flushes it on shutdown.
func (s *Starter) Build(_ context.Context, b apis.AppBuilder) error {
	if s.logger == nil {
		return errors.New("boot(logger): Build called before Logger")
	}
	if err := registry.Insert(b.Components(), s.logger); err != nil {
		return err
	}
	l := s.logger
	b.AddShutdownHook("logger.sync", func(context.Context) error {
		if err := l.Sync(); err != nil && !ignorableSyncError(err) {
			return err
		}
		return nil
	})
	return nil
}

func (s *Starter) build(c Config) (*zap.Logger, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	switch c.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "", "console":
		if c.Color {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("boot(logger): unknown format %q", c.Format)
	}

	var sink zapcore.WriteSyncer
	switch {
	case s.writer != nil:
		sink = zapcore.AddSync(s.writer)
	case c.Output == "stderr":
		sink = zapcore.Lock(os.Stderr)
	default:
		sink = zapcore.Lock(os.Stdout)
	}

	core := zapcore.NewCore(encoder, sink, c.Level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ignorableSyncError reports errors returned when syncing terminals and pipes.
func ignorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
