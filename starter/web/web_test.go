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

package web_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/builder"
	"dirpx.dev/boot/catalog"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/registry"
	"dirpx.dev/boot/route"
	"dirpx.dev/boot/starter/web"
)

type greeting struct{ text string }

type fragments struct{}

func (fragments) Build(_ context.Context, b apis.AppBuilder) error {
	if err := registry.Insert(b.Components(), &greeting{text: "hi"}); err != nil {
		return err
	}
	r := route.NewRouter()
	if err := r.Add(http.MethodGet, "/fragment", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "from fragment")
	})); err != nil {
		return err
	}
	return web.Contribute(b, r)
}

func greet(ctx context.Context) (string, error) {
	g, err := web.Component[*greeting](ctx)
	if err != nil {
		return "", err
	}
	return g.text, nil
}

func echo(r *http.Request) map[string]string {
	return map[string]string{"id": chi.URLParam(r, "id")}
}

func handlers() *catalog.Catalog[*route.Handler] {
	c := catalog.New[*route.Handler]()
	c.Submit(route.Scope("/api",
		route.Must(route.Get("/greet", greet)),
		route.Must(route.Routes(echo, route.On("GET", "/echo/{id}"), route.On("POST", "/echo/{id}"))),
	)...)
	return c
}

func buildApp(t *testing.T, cfg map[string]any) (*builder.App, *web.Server) {
	t.Helper()
	app, err := builder.New(
		builder.WithConfig(config.FromMap(cfg)),
		builder.WithServices(nil),
		builder.WithSignals(),
	).AddStarter(fragments{}, web.New(web.WithHandlers(handlers()))).Build(context.Background())
	require.NoError(t, err)
	return app, registry.MustGet[*web.Server](app.Components())
}

func get(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestConfig_DefaultsAndOverrides(t *testing.T) {
	_, srv := buildApp(t, map[string]any{"web.port": 9000, "web.shutdown_timeout": "2s"})

	c := srv.Config()
	assert.Equal(t, 9000, c.Port)
	assert.Equal(t, 2*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "0.0.0.0", c.Binding)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:9000", c.Addr())
}

func TestConfig_Invalid(t *testing.T) {
	_, err := builder.New(
		builder.WithConfig(config.FromMap(map[string]any{"web.port": 70000})),
		builder.WithServices(nil),
	).AddStarter(web.New()).Build(context.Background())
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestHandler_ServesCatalogAndFragments(t *testing.T) {
	app, srv := buildApp(t, nil)
	h, err := srv.Handler(app)
	require.NoError(t, err)

	rec := get(t, h, http.MethodGet, "/api/greet")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())

	rec = get(t, h, http.MethodPost, "/api/echo/42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())

	rec = get(t, h, http.MethodGet, "/fragment")
	assert.Equal(t, "from fragment", rec.Body.String())

	rec = get(t, h, http.MethodDelete, "/api/greet")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = get(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boot_http_requests_total{code="200",method="GET",route="/api/greet"} 1`)
}

func TestHandler_MetricsDisabled(t *testing.T) {
	app, srv := buildApp(t, map[string]any{"web.metrics.enabled": false})
	h, err := srv.Handler(app)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, get(t, h, http.MethodGet, "/metrics").Code)
}

func TestHandler_DuplicateRoute(t *testing.T) {
	c := handlers()
	c.Submit(route.Must(route.Get("/api/greet", greet)))

	app, err := builder.New(
		builder.WithConfig(config.Empty()),
		builder.WithServices(nil),
	).AddStarter(web.New(web.WithHandlers(c))).Build(context.Background())
	require.NoError(t, err)

	_, err = registry.MustGet[*web.Server](app.Components()).Handler(app)
	assert.ErrorIs(t, err, route.ErrDuplicateRoute)
}

func TestServe_ListensAndStopsOnCancel(t *testing.T) {
	app, srv := buildApp(t, map[string]any{"web.binding": "127.0.0.1", "web.port": 0})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	var (
		msg    string
		runErr error
	)
	go func() {
		defer close(done)
		msg, runErr = app.Run(ctx)
	}()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/greet")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "hi", string(body))
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, runErr)
	assert.True(t, strings.Contains(msg, "web server stopped"), msg)
}

func TestServe_ListenFailureReleasesWaiters(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = taken.Close() }()
	port := taken.Addr().(*net.TCPAddr).Port

	app, srv := buildApp(t, map[string]any{"web.binding": "127.0.0.1", "web.port": port})
	_, runErr := app.Run(context.Background())
	require.Error(t, runErr)

	addr := make(chan string, 1)
	go func() { addr <- srv.Addr() }()
	select {
	case got := <-addr:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Addr blocked after the listener failed")
	}
	assert.ErrorContains(t, srv.Err(), "boot(web): listen")
}
