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

// Package builder assembles an application and drives its lifecycle.
//
// A Builder moves through Building, Running and Terminated. While Building,
// starters run sequentially in the order they were added, followed by every
// plugin of the service catalog. Each may register components and schedule
// tasks. Build then seals the component registry and returns an App, whose
// Run executes every task concurrently until they finish, one fails, or a
// shutdown signal arrives.
package builder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/naming"
	"dirpx.dev/boot/registry"
)

// New creates a Builder in the Building state.
func New(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{
		opts:   o,
		reg:    registry.New(),
		logger: o.logger,
		names:  make(map[string]bool),
	}
}

// Builder is the single-owner staging area of an application.
// It is not safe for concurrent use.
type Builder struct {
	opts options

	reg    *registry.Building
	cfg    apis.ConfigRegistry
	logger *zap.Logger

	starters []apis.Starter
	names    map[string]bool
	addErr   error

	tasks []namedTask
	hooks []namedHook
	built bool
}

type namedTask struct {
	name string
	task apis.Task
}

type namedHook struct {
	name string
	hook apis.Hook
}

// Ensure Builder implements apis.AppBuilder.
var _ apis.AppBuilder = (*Builder)(nil)

// AddStarter appends starters. They run in the order they are added.
// A problem with a starter is reported by Build.
func (b *Builder) AddStarter(starters ...apis.Starter) *Builder {
	for _, s := range starters {
		if s == nil {
			b.recordAddErr(ErrNilStarter)
			continue
		}
		name := naming.Of(s)
		if b.names[name] {
			b.recordAddErr(fmt.Errorf("%w: %s", ErrDuplicateStarter, name))
			continue
		}
		b.names[name] = true
		b.starters = append(b.starters, s)
	}
	return b
}

func (b *Builder) recordAddErr(err error) {
	if b.addErr == nil {
		b.addErr = err
	}
}

// Components returns the registry being built.
func (b *Builder) Components() apis.MutableComponentRegistry { return b.reg }

// Config returns the configuration registry. It is nil until Build loads it.
func (b *Builder) Config() apis.ConfigRegistry { return b.cfg }

// Logger returns the current logger.
func (b *Builder) Logger() *zap.Logger { return b.logger }

// AddTask schedules task to run when the App runs.
func (b *Builder) AddTask(name string, task apis.Task) {
	if task == nil {
		return
	}
	b.tasks = append(b.tasks, namedTask{name: name, task: task})
	b.logger.Debug("task scheduled", zap.String("task", name))
}

// AddShutdownHook registers hook to run once every task has returned.
func (b *Builder) AddShutdownHook(name string, hook apis.Hook) {
	if hook == nil {
		return
	}
	b.hooks = append(b.hooks, namedHook{name: name, hook: hook})
}

// Build runs every starter and plugin, seals the registry and returns the App.
// Any error aborts the build; shutdown hooks registered before the failure
// run before Build returns. A failed Builder cannot be reused.
func (b *Builder) Build(ctx context.Context) (app *App, err error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true
	if b.addErr != nil {
		return nil, b.addErr
	}
	defer func() {
		if err != nil {
			b.release(ctx, err)
		}
	}()

	if err := b.loadConfig(); err != nil {
		return nil, &StageError{Stage: "config", Err: err}
	}

	// Logger starters provide the logger before any starter builds.
	for _, s := range b.starters {
		ls, ok := s.(apis.LoggerStarter)
		if !ok {
			continue
		}
		l, err := ls.Logger(ctx, b.cfg)
		if err != nil {
			return nil, &StageError{Stage: "logger", Name: naming.Of(s), Err: err}
		}
		if l == nil {
			return nil, &StageError{Stage: "logger", Name: naming.Of(s), Err: ErrNilLogger}
		}
		b.logger = l
	}

	for _, s := range b.starters {
		name := naming.Of(s)
		if err := s.Build(ctx, b); err != nil {
			return nil, &StageError{Stage: "starter", Name: name, Err: err}
		}
		b.logger.Debug("starter built", zap.String("starter", name))
	}

	if c := b.opts.services; c != nil {
		plugins := c.Ordered()
		for _, p := range plugins {
			if err := p.Install(ctx, b); err != nil {
				return nil, &StageError{Stage: "plugin", Name: naming.Of(p), Err: err}
			}
		}
		b.logger.Debug("plugins installed", zap.Int("count", len(plugins)))
	}

	app = &App{
		id:         uuid.NewString(),
		components: b.reg.Seal(),
		cfg:        b.cfg,
		logger:     b.logger,
		tasks:      b.tasks,
		hooks:      b.hooks,
		timeout:    b.opts.shutdownTimeout,
		signals:    b.opts.signals,
	}
	b.tasks, b.hooks = nil, nil

	b.logger.Info("application built",
		zap.String("app", app.id),
		zap.Int("components", app.components.Count()),
		zap.Int("tasks", len(app.tasks)),
	)
	return app, nil
}

// release runs the hooks registered by a failed build so resources
// acquired by earlier starters are not leaked.
func (b *Builder) release(ctx context.Context, cause error) {
	hooks := b.hooks
	b.tasks, b.hooks = nil, nil
	if len(hooks) == 0 {
		return
	}
	b.logger.Warn("build failed, running shutdown hooks", zap.Int("hooks", len(hooks)), zap.Error(cause))
	if err := runHooks(ctx, b.logger, hooks, b.opts.shutdownTimeout); err != nil {
		b.logger.Error("shutdown hooks of failed build", zap.Error(err))
	}
}

func (b *Builder) loadConfig() error {
	if b.opts.tree != nil {
		b.cfg = b.opts.tree
		return nil
	}
	tree, err := config.Load(b.opts.configOptions...)
	if err != nil {
		return err
	}
	b.cfg = tree
	return nil
}
