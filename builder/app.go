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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/registry"
)

// App is a built application. It is immutable and can be run once.
type App struct {
	id         string
	components *registry.Sealed
	cfg        apis.ConfigRegistry
	logger     *zap.Logger
	tasks      []namedTask
	hooks      []namedHook
	timeout    time.Duration
	signals    []os.Signal

	running atomic.Bool
}

// Ensure App implements apis.App.
var _ apis.App = (*App)(nil)

// ID returns the unique identifier of this application instance.
func (a *App) ID() string { return a.id }

// Components returns the sealed component registry.
func (a *App) Components() apis.ComponentRegistry { return a.components }

// Config returns the configuration registry.
func (a *App) Config() apis.ConfigRegistry { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Tasks returns the names of the scheduled tasks.
func (a *App) Tasks() []string {
	names := make([]string, len(a.tasks))
	for i, t := range a.tasks {
		names[i] = t.name
	}
	return names
}

// Run executes every task concurrently and blocks until all of them return.
//
// When ctx is cancelled or a shutdown signal arrives, every task's context
// is cancelled; tasks that then return a context error are treated as
// stopped gracefully. When a task fails, its siblings are cancelled the same
// way and the failure becomes the result as a *TaskError. In both cases
// tasks that do not return within the shutdown timeout are abandoned.
// Shutdown hooks run last, in reverse registration order.
func (a *App) Run(ctx context.Context) (string, error) {
	if !a.running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}

	if len(a.signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, a.signals...)
		defer stop()
	}

	a.logger.Info("application running", zap.String("app", a.id), zap.Int("tasks", len(a.tasks)))
	msg, err := a.runTasks(ctx)

	if hookErr := a.shutdown(ctx); hookErr != nil {
		err = multierr.Append(err, hookErr)
	}
	if err != nil {
		a.logger.Error("application terminated", zap.String("app", a.id), zap.Error(err))
		return "", err
	}
	a.logger.Info("application terminated", zap.String("app", a.id), zap.String("result", msg))
	return msg, nil
}

func (a *App) runTasks(ctx context.Context) (string, error) {
	if len(a.tasks) == 0 {
		return "no tasks scheduled", nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		mu       sync.Mutex
		messages = make([]string, len(a.tasks))
		first    *TaskError
	)
	for i, t := range a.tasks {
		g.Go(func() error {
			msg, err := a.call(gctx, t)
			if err != nil && ctx.Err() != nil && isContextErr(err) {
				// Stopped by the shutdown signal.
				err = nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				te := &TaskError{Task: t.name, Err: err}
				if first == nil {
					first = te
				}
				a.logger.Warn("task failed", zap.String("task", t.name), zap.Error(err))
				return te
			}
			messages[i] = t.name + ": " + msg
			a.logger.Debug("task finished", zap.String("task", t.name), zap.String("result", msg))
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-gctx.Done():
		if ctx.Err() != nil {
			a.logger.Info("shutdown requested", zap.Error(context.Cause(ctx)))
		}
		timer := time.NewTimer(a.timeout)
		defer timer.Stop()
		select {
		case err = <-done:
		case <-timer.C:
			mu.Lock()
			if first != nil {
				err = first
			} else {
				err = fmt.Errorf("%w (%s)", ErrShutdownTimeout, a.timeout)
			}
			mu.Unlock()
			a.logger.Warn("tasks still running after shutdown timeout", zap.Duration("timeout", a.timeout))
		}
	}
	if err != nil {
		mu.Lock()
		defer mu.Unlock()
		if first != nil {
			return "", first
		}
		return "", err
	}
	return strings.Join(messages, "; "), nil
}

// call runs t, turning a panic into an error wrapping ErrTaskPanic.
func (a *App) call(ctx context.Context, t namedTask) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("task panicked", zap.String("task", t.name), zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return t.task(ctx, a)
}

// shutdown runs the hooks of a.
func (a *App) shutdown(ctx context.Context) error {
	return runHooks(ctx, a.logger, a.hooks, a.timeout)
}

// Discard releases an App that will not be run by running its shutdown
// hooks. It fails with ErrAlreadyRunning once Run or Discard was called.
func (a *App) Discard(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	a.logger.Info("application discarded", zap.String("app", a.id))
	return a.shutdown(ctx)
}

// runHooks runs hooks in reverse order with a context bounded by timeout,
// combining their errors. Cancellation of ctx does not shorten the hooks.
func runHooks(ctx context.Context, log *zap.Logger, hooks []namedHook, timeout time.Duration) error {
	if len(hooks) == 0 {
		return nil
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.hook(hctx); err != nil {
			log.Warn("shutdown hook failed", zap.String("hook", h.name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("boot(builder): shutdown hook %s: %w", h.name, err))
		}
	}
	return errs
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
