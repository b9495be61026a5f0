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

package route_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/boot/route"
)

func hello() string { return "hello" }

func noResult(http.ResponseWriter, *http.Request) {}

type post struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func paths(h *route.Handler) []string {
	var out []string
	for _, b := range h.Bindings() {
		out = append(out, b.Verb+" "+b.Path)
	}
	return out
}

func TestRoute_Verbs(t *testing.T) {
	h, err := route.Route("/x", hello, route.Method("POST"), route.Method("GET"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /x", "POST /x"}, paths(h))
	assert.Equal(t, "route_test.hello", h.Name())
}

func TestRoute_DeclarationErrors(t *testing.T) {
	tests := []struct {
		name string
		decl func() (*route.Handler, error)
		want error
	}{
		{"duplicate verb", func() (*route.Handler, error) {
			return route.Route("/x", hello, route.Method("GET"), route.Method("GET"))
		}, route.ErrDuplicateVerb},
		{"zero verbs", func() (*route.Handler, error) {
			return route.Route("/x", hello)
		}, route.ErrZeroVerbs},
		{"lowercase verb", func() (*route.Handler, error) {
			return route.Route("/x", hello, route.Method("get"))
		}, route.ErrUnknownVerb},
		{"unknown key", func() (*route.Handler, error) {
			return route.Route("/x", hello, route.Attribute("name", "x"))
		}, route.ErrUnknownAttributeKey},
		{"method on single verb", func() (*route.Handler, error) {
			return route.Get("/x", hello, route.Method("POST"))
		}, route.ErrVerbForbidden},
		{"unknown key on single verb", func() (*route.Handler, error) {
			return route.Post("/x", hello, route.Attribute("guard", "x"))
		}, route.ErrUnknownAttributeKey},
		{"routes without declarations", func() (*route.Handler, error) {
			return route.Routes(hello)
		}, route.ErrZeroVerbs},
		{"routes duplicate", func() (*route.Handler, error) {
			return route.Routes(hello, route.On("GET", "/a"), route.On("GET", "/a"))
		}, route.ErrDuplicateVerb},
		{"missing return type", func() (*route.Handler, error) {
			return route.Get("/x", noResult)
		}, route.ErrMissingReturnType},
		{"error only", func() (*route.Handler, error) {
			return route.Get("/x", func() error { return nil })
		}, route.ErrBadHandler},
		{"bad param", func() (*route.Handler, error) {
			return route.Get("/x", func(int) string { return "" })
		}, route.ErrBadHandler},
		{"not a function", func() (*route.Handler, error) {
			return route.Get("/x", 42)
		}, route.ErrBadHandler},
		{"relative path", func() (*route.Handler, error) {
			return route.Get("x", hello)
		}, route.ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.decl()
			assert.Nil(t, h)
			require.ErrorIs(t, err, tt.want)
			var de *route.DeclarationError
			require.ErrorAs(t, err, &de)
			assert.NotEmpty(t, de.Handler)
		})
	}
}

func TestRoutes_OneBindingPerDeclaration(t *testing.T) {
	h, err := route.Routes(hello, route.On("GET", "/a"), route.On("POST", "/a"), route.On("GET", "/b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /a", "POST /a", "GET /b"}, paths(h))
}

func TestScope_Nesting(t *testing.T) {
	x := route.Must(route.Get("/x", hello))
	scoped := route.Scope("/api", route.Scope("/v1", x)...)
	require.Len(t, scoped, 1)
	assert.Equal(t, []string{"GET /api/v1/x"}, paths(scoped[0]))
	// The original declaration is untouched.
	assert.Equal(t, []string{"GET /x"}, paths(x))
}

func TestScope_RootPathBindsPrefix(t *testing.T) {
	root := route.Must(route.Get("/", hello))
	scoped := route.Scope("/api", root)
	require.Len(t, scoped, 1)
	assert.Equal(t, []string{"GET /api"}, paths(scoped[0]))

	r := route.NewRouter()
	require.NoError(t, scoped[0].Register(r))
	mux := chi.NewRouter()
	for _, b := range r.Bindings() {
		mux.Method(b.Verb, b.Path, b.Handler)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestJoin(t *testing.T) {
	cases := map[[2]string]string{
		{"/api", "/x"}:   "/api/x",
		{"/api/", "/x"}:  "/api/x",
		{"api", "x"}:     "/api/x",
		{"/api", "/"}:    "/api",
		{"", "/"}:        "/",
		{"/", "/"}:       "/",
		{"/api", ""}:     "/api",
		{"", "/x"}:       "/x",
		{"/", "/x"}:      "/x",
		{"/a//", "//x/"}: "/a/x/",
	}
	for in, want := range cases {
		assert.Equal(t, want, route.Join(in[0], in[1]), "Join(%q, %q)", in[0], in[1])
	}
}

func TestMust_Panics(t *testing.T) {
	assert.Panics(t, func() { route.Must(route.Route("/x", hello)) })
}

func TestAdapter_Rendering(t *testing.T) {
	tests := []struct {
		name        string
		fn          any
		status      int
		contentType string
		body        string
	}{
		{"string", hello, http.StatusOK, "text/plain; charset=utf-8", "hello"},
		{"bytes", func() []byte { return []byte{1, 2} }, http.StatusOK, "application/octet-stream", "\x01\x02"},
		{"json", func(ctx context.Context) (post, error) { return post{ID: "1", Title: "t"}, nil },
			http.StatusOK, "application/json", `{"id":"1","title":"t"}`},
		{"status error", func() (*post, error) { return nil, route.Status(http.StatusNotFound, errors.New("no such post")) },
			http.StatusNotFound, "text/plain; charset=utf-8", "no such post\n"},
		{"plain error", func(*http.Request) (string, error) { return "", errors.New("boom") },
			http.StatusInternalServerError, "text/plain; charset=utf-8", "boom\n"},
		{"writer and request", func(w http.ResponseWriter, r *http.Request) string {
			w.Header().Set("X-Path", r.URL.Path)
			return "ok"
		}, http.StatusOK, "text/plain; charset=utf-8", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := route.Must(route.Get("/x", tt.fn))
			rec := httptest.NewRecorder()
			h.Bindings()[0].Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

type redirect string

func (r redirect) Respond(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, string(r), http.StatusFound)
}

func TestAdapter_Responder(t *testing.T) {
	h := route.Must(route.Get("/old", func() redirect { return "/new" }))
	rec := httptest.NewRecorder()
	h.Bindings()[0].Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/old", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/new", rec.Header().Get("Location"))
}

func TestRouter_AddAndMerge(t *testing.T) {
	a := route.NewRouter()
	require.NoError(t, route.Must(route.Get("/a", hello)).Register(a))

	b := route.NewRouter()
	require.NoError(t, route.Must(route.Route("/b", hello, route.Method("GET"), route.Method("PUT"))).Register(b))
	require.NoError(t, a.Merge(b))
	assert.Equal(t, 3, a.Len())

	dup := route.NewRouter()
	require.NoError(t, dup.Add("PUT", "/c", http.NotFoundHandler()))
	require.NoError(t, dup.Add("GET", "/a", http.NotFoundHandler()))
	assert.ErrorIs(t, a.Merge(dup), route.ErrDuplicateRoute)
	assert.Equal(t, 3, a.Len(), "failed merge must not add bindings")

	assert.ErrorIs(t, a.Add("FETCH", "/z", http.NotFoundHandler()), route.ErrUnknownVerb)
	assert.ErrorIs(t, route.Must(route.Get("/a", hello)).Register(a), route.ErrDuplicateRoute)
}

func TestRegister_SubmitsToCatalog(t *testing.T) {
	before := route.Handlers.Len()
	route.Register(route.Scope("/test", route.Must(route.Get("/one", hello)), nil)...)
	route.Register(nil)

	require.Equal(t, before+1, route.Handlers.Len())
	last := route.Handlers.Entries()[before]
	assert.Equal(t, []string{"GET /test/one"}, paths(last))
}
