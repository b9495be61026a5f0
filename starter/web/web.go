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

// Package web provides the HTTP server starter.
//
// The starter serves every handler registered in the route catalog plus
// every route.Router fragment accumulated into the component registry. The
// router is assembled when the application starts running, from the sealed
// registry, so fragments contributed by any starter or service are included.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/catalog"
	"dirpx.dev/boot/registry"
	"dirpx.dev/boot/route"
)

// Option configures the starter.
type Option func(*Starter)

// WithHandlers serves handlers from c instead of route.Handlers.
func WithHandlers(c *catalog.Catalog[*route.Handler]) Option {
	return func(s *Starter) { s.handlers = c }
}

// New returns the web starter.
func New(opts ...Option) *Starter {
	s := &Starter{handlers: route.Handlers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Starter registers a *Server component and schedules its serving task.
type Starter struct {
	handlers *catalog.Catalog[*route.Handler]
}

// Ensure Starter implements apis.Starter.
var _ apis.Starter = (*Starter)(nil)

// Name implements apis.Namer.
func (*Starter) Name() string { return "web" }

// Build reads the web configuration, registers the server and schedules it.
func (s *Starter) Build(_ context.Context, b apis.AppBuilder) error {
	cfg, err := loadConfig(b.Config())
	if err != nil {
		return err
	}
	srv := &Server{
		cfg:      cfg,
		handlers: s.handlers,
		log:      b.Logger().Named("web"),
		ready:    make(chan struct{}),
	}
	if err := registry.Insert(b.Components(), srv); err != nil {
		return err
	}
	b.AddTask("web", srv.Serve)
	return nil
}

// Contribute adds a router fragment to be served by the web starter.
func Contribute(b apis.AppBuilder, r *route.Router) error {
	return registry.Accumulate(b.Components(), r)
}

// Server is the HTTP server component.
type Server struct {
	cfg      Config
	handlers *catalog.Catalog[*route.Handler]
	log      *zap.Logger

	readyOnce sync.Once
	ready     chan struct{}
	addr      string
	listenErr error
}

// Config returns the server configuration.
func (s *Server) Config() Config { return s.cfg }

// Ready is closed once the server listens or has failed to.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr waits for Ready and returns the bound address, or "" if the
// listener could not be created.
func (s *Server) Addr() string {
	<-s.ready
	return s.addr
}

// Err waits for Ready and returns the listen error, if any.
func (s *Server) Err() error {
	<-s.ready
	return s.listenErr
}

// markReady publishes the listen outcome exactly once.
func (s *Server) markReady(addr string, err error) {
	s.readyOnce.Do(func() {
		s.addr, s.listenErr = addr, err
		close(s.ready)
	})
}

// Router merges the catalog handlers and the accumulated fragments of app.
func (s *Server) Router(app apis.App) (*route.Router, error) {
	r := route.NewRouter()
	if s.handlers != nil {
		for _, h := range s.handlers.Entries() {
			if err := h.Register(r); err != nil {
				return nil, err
			}
		}
	}
	fragments, _ := registry.Get[[]*route.Router](app.Components())
	for _, f := range fragments {
		if err := r.Merge(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Handler builds the chi mux serving app.
func (s *Server) Handler(app apis.App) (http.Handler, error) {
	r, err := s.Router(app)
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(s.log))
	mux.Use(middleware.Recoverer)
	mux.Use(withApp(app))

	if s.cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := newMetrics(reg)
		mux.Use(m.instrument)
		mux.Method(http.MethodGet, s.cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	for _, b := range r.Bindings() {
		mux.Method(b.Verb, b.Path, b.Handler)
	}
	s.log.Info("routes mounted", zap.Int("routes", r.Len()))
	return mux, nil
}

// Serve listens and serves until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context, app apis.App) (string, error) {
	h, err := s.Handler(app)
	if err != nil {
		s.markReady("", err)
		return "", err
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		err = fmt.Errorf("boot(web): listen %s: %w", s.cfg.Addr(), err)
		s.markReady("", err)
		return "", err
	}
	s.markReady(ln.Addr().String(), nil)

	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		ErrorLog:     zap.NewStdLog(s.log),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("web server listening", zap.String("addr", s.addr))

	select {
	case err := <-errCh:
		return "", fmt.Errorf("boot(web): serve: %w", err)
	case <-ctx.Done():
	}

	if s.cfg.Graceful {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.log.Error("web server shutdown error", zap.Error(err))
			_ = srv.Close()
		}
	} else {
		_ = srv.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return "", fmt.Errorf("boot(web): serve: %w", err)
	}
	s.log.Info("web server stopped")
	return "web server stopped", nil
}
