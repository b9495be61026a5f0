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

package boot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/builder"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/registry"
)

var (
	// ErrNoApp is returned when no application is running.
	ErrNoApp = errors.New("boot: no application is running")
	// ErrAppRunning is returned when an application is already running in this process.
	ErrAppRunning = errors.New("boot: an application is already running")
)

// state is the published process-wide snapshot.
type state struct {
	app *builder.App
}

var (
	// st holds the current snapshot; readers never lock.
	st atomic.Pointer[state]
	// runMu serializes publication of a new App.
	runMu sync.Mutex
)

func init() {
	st.Store(&state{})
}

// New returns a builder with the given options and starters.
func New(opts []builder.Option, starters ...apis.Starter) *builder.Builder {
	return builder.New(opts...).AddStarter(starters...)
}

// Run builds an application from starters and the service catalog, then
// runs it until its tasks finish, one fails, or a shutdown signal arrives.
// It returns the completion message of the run.
func Run(ctx context.Context, starters ...apis.Starter) (string, error) {
	return RunWith(ctx, New(nil, starters...))
}

// RunWith builds b and runs the resulting App. While it runs, the App is
// published as the process-wide current application.
func RunWith(ctx context.Context, b *builder.Builder) (string, error) {
	app, err := b.Build(ctx)
	if err != nil {
		return "", err
	}
	if err := publish(app); err != nil {
		// Release what the starters acquired; this App never runs.
		if derr := app.Discard(ctx); derr != nil {
			app.Logger().Warn("discarding application", zap.Error(derr))
		}
		return "", err
	}
	defer unpublish(app)
	return app.Run(ctx)
}

func publish(app *builder.App) error {
	runMu.Lock()
	defer runMu.Unlock()

	if st.Load().app != nil {
		return ErrAppRunning
	}
	// Store the new state atomically.
	st.Store(&state{app: app})
	return nil
}

func unpublish(app *builder.App) {
	runMu.Lock()
	defer runMu.Unlock()

	if st.Load().app == app {
		st.Store(&state{})
	}
}

// Current returns the running application.
func Current() (apis.App, error) {
	app := st.Load().app
	if app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// Get returns the component T of the running application.
func Get[T any]() (T, bool) {
	app := st.Load().app
	if app == nil {
		var zero T
		return zero, false
	}
	return registry.Get[T](app.Components())
}

// Config extracts the configuration subtree at prefix from the running application.
func Config[T any](prefix string) (T, error) {
	app := st.Load().app
	if app == nil {
		var zero T
		return zero, ErrNoApp
	}
	return config.Extract[T](app.Config(), prefix)
}
