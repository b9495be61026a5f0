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

package apis

import (
	"context"

	"go.uber.org/zap"
)

// AppBuilder is the staging area handed to starters and installers while an
// application is in the Building state. It is owned by a single goroutine.
type AppBuilder interface {
	// Components returns the registry being built.
	Components() MutableComponentRegistry
	// Config returns the configuration registry.
	Config() ConfigRegistry
	// AddTask schedules task to run concurrently once the application runs.
	AddTask(name string, task Task)
	// AddShutdownHook registers hook to run after every task has returned.
	// Hooks run in reverse registration order.
	AddShutdownHook(name string, hook Hook)
	// Logger returns the logger of the application being built.
	Logger() *zap.Logger
}

// App is the read-only view of a built application given to running tasks.
type App interface {
	// ID returns the unique identifier of this application instance.
	ID() string
	// Components returns the sealed component registry.
	Components() ComponentRegistry
	// Config returns the configuration registry.
	Config() ConfigRegistry
	// Logger returns the application logger.
	Logger() *zap.Logger
}

// Task is a unit of concurrent work contributed while Building and executed
// while Running. It returns a short completion message.
// Tasks must return promptly once ctx is done.
type Task func(ctx context.Context, app App) (string, error)

// Hook is a shutdown callback.
type Hook func(ctx context.Context) error

// Starter configures components and may schedule tasks.
// Starters run sequentially in the order they were added to the builder.
type Starter interface {
	Build(ctx context.Context, b AppBuilder) error
}

// LoggerStarter is a Starter that also provides the application logger.
// Logger starters run before every other starter.
type LoggerStarter interface {
	Starter
	Logger(ctx context.Context, cfg ConfigRegistry) (*zap.Logger, error)
}

// Installer is a self-registering plugin entry collected into a catalog.
// Each entry is installed exactly once per build.
type Installer interface {
	Install(ctx context.Context, b AppBuilder) error
}

// Ordered lets catalog entries request an installation priority.
// Lower values install first; entries without it use 0.
type Ordered interface {
	Order() int
}

// Namer lets a value pick its own human-readable name for logs and errors.
type Namer interface {
	Name() string
}
