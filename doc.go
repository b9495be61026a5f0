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

// Package boot bootstraps applications from independently declared parts.
//
// An application is assembled from three kinds of contributions:
//
//   - Starters, passed explicitly to Run. They run sequentially in the
//     order given, may register components and schedule tasks. The web
//     server, the MongoDB client and the logger are starters.
//
//   - Services, declared with package inject and registered from init().
//     Each declaration lists how its fields are obtained: an existing
//     component, a configuration subtree, or a constructor function.
//
//   - Route handlers, declared with package route and registered from
//     init(). The web starter merges them into one router.
//
// Services and handlers land in process-wide catalogs, so an application
// picks up every package linked into the binary without a central list.
// Catalog order follows package initialization and is not source order;
// services that depend on each other use inject ordering.
//
// # Lifecycle
//
// Building loads configuration (file, profile file, environment), runs
// logger starters, then every starter, then installs every catalog service.
// The component registry is then sealed and the App is returned. Running
// starts every scheduled task in its own goroutine. The run ends when all
// tasks return, when one fails (its siblings are cancelled), or when
// SIGINT/SIGTERM arrives (every task is cancelled and given the shutdown
// timeout to return). Shutdown hooks run last, in reverse order.
//
// # Global API
//
// The running App is published in a lock-free snapshot:
//
//	app, err := boot.Current()
//	svc, ok := boot.Get[*blog.Service]()
//	cfg, err := boot.Config[web.Config]("web")
//
// Only one App runs per process at a time.
package boot
