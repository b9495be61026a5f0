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

// Package route declares HTTP handlers that register themselves into a
// process-wide catalog.
//
// A declaration binds a handler function to one or more (method, path)
// pairs and is validated when it is made. Declarations are usually made
// from init() with Must, so a malformed one stops the program before main
// runs:
//
//	func init() {
//		route.Register(route.Scope("/api",
//			route.Must(route.Get("/", hello)),
//			route.Must(route.Route("/post", upsert, route.Method("POST"), route.Method("PUT"))),
//		)...)
//	}
//
// The web starter merges every registered handler into one Router.
package route

import (
	"fmt"
	"net/http"
	"path"
	"reflect"
	"runtime"
	"strings"

	"dirpx.dev/boot/catalog"
)

// Handlers collects every registered handler.
var Handlers = catalog.New[*Handler]()

// Binding is one (method, path, handler) triple.
type Binding struct {
	Verb    string
	Path    string
	Handler http.Handler
}

// Handler is a validated handler declaration with its bindings.
type Handler struct {
	name     string
	bindings []Binding
}

// Name returns the handler function name.
func (h *Handler) Name() string { return h.name }

// Bindings returns the handler's bindings.
func (h *Handler) Bindings() []Binding {
	return append([]Binding(nil), h.bindings...)
}

// Register adds every binding of h to r.
func (h *Handler) Register(r *Router) error {
	for _, b := range h.bindings {
		if err := r.Add(b.Verb, b.Path, b.Handler); err != nil {
			return &DeclarationError{Handler: h.name, Path: b.Path, Err: err}
		}
	}
	return nil
}

// Route declares fn for path under every method attribute.
func Route(path string, fn any, attrs ...Attr) (*Handler, error) {
	name := funcName(fn)
	set := verbSet{}
	for _, a := range attrs {
		if a.Key != "method" {
			return nil, &DeclarationError{Handler: name, Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownAttributeKey, a.Key)}
		}
		if err := set.add(a.Value); err != nil {
			return nil, &DeclarationError{Handler: name, Path: path, Err: err}
		}
	}
	if len(set) == 0 {
		return nil, &DeclarationError{Handler: name, Path: path, Err: ErrZeroVerbs}
	}
	return declare(name, fn, []decl{{path: path, verbs: set.sorted()}})
}

// Get declares fn for GET path.
func Get(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodGet, path, fn, attrs)
}

// Post declares fn for POST path.
func Post(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodPost, path, fn, attrs)
}

// Put declares fn for PUT path.
func Put(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodPut, path, fn, attrs)
}

// Delete declares fn for DELETE path.
func Delete(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodDelete, path, fn, attrs)
}

// Head declares fn for HEAD path.
func Head(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodHead, path, fn, attrs)
}

// Options declares fn for OPTIONS path.
func Options(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodOptions, path, fn, attrs)
}

// Trace declares fn for TRACE path.
func Trace(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodTrace, path, fn, attrs)
}

// Patch declares fn for PATCH path.
func Patch(path string, fn any, attrs ...Attr) (*Handler, error) {
	return single(http.MethodPatch, path, fn, attrs)
}

func single(verb, path string, fn any, attrs []Attr) (*Handler, error) {
	name := funcName(fn)
	if err := checkSingle(attrs); err != nil {
		return nil, &DeclarationError{Handler: name, Path: path, Err: err}
	}
	return declare(name, fn, []decl{{path: path, verbs: []string{verb}}})
}

func checkSingle(attrs []Attr) error {
	for _, a := range attrs {
		if a.Key == "method" {
			return ErrVerbForbidden
		}
		return fmt.Errorf("%w: %q", ErrUnknownAttributeKey, a.Key)
	}
	return nil
}

// Decl is one (method, path) declaration of Routes.
type Decl struct {
	verb  string
	path  string
	attrs []Attr
}

// On declares verb for path within Routes.
func On(verb, path string, attrs ...Attr) Decl {
	return Decl{verb: verb, path: path, attrs: attrs}
}

// Routes declares fn under several independent (method, path) pairs.
// At least one declaration is required.
func Routes(fn any, decls ...Decl) (*Handler, error) {
	name := funcName(fn)
	if len(decls) == 0 {
		return nil, &DeclarationError{Handler: name, Err: ErrZeroVerbs}
	}
	byPath := make(map[string]verbSet)
	out := make([]decl, 0, len(decls))
	for _, d := range decls {
		if err := checkSingle(d.attrs); err != nil {
			return nil, &DeclarationError{Handler: name, Path: d.path, Err: err}
		}
		set, ok := byPath[d.path]
		if !ok {
			set = verbSet{}
			byPath[d.path] = set
		}
		if err := set.add(d.verb); err != nil {
			return nil, &DeclarationError{Handler: name, Path: d.path, Err: err}
		}
		out = append(out, decl{path: d.path, verbs: []string{d.verb}})
	}
	return declare(name, fn, out)
}

type decl struct {
	path  string
	verbs []string
}

// declare compiles fn once and binds it to every declaration.
func declare(name string, fn any, decls []decl) (*Handler, error) {
	h, err := adapt(fn)
	if err != nil {
		return nil, &DeclarationError{Handler: name, Err: err}
	}
	out := &Handler{name: name}
	for _, d := range decls {
		if !strings.HasPrefix(d.path, "/") {
			return nil, &DeclarationError{Handler: name, Path: d.path, Err: ErrInvalidPath}
		}
		for _, v := range d.verbs {
			out.bindings = append(out.bindings, Binding{Verb: v, Path: d.path, Handler: h})
		}
	}
	return out, nil
}

// Scope prefixes every binding of handlers with prefix.
// Nested scopes compose outside in: Scope("/api", Scope("/v1", x...)...)
// binds x's "/p" at "/api/v1/p".
func Scope(prefix string, handlers ...*Handler) []*Handler {
	out := make([]*Handler, 0, len(handlers))
	for _, h := range handlers {
		if h == nil {
			continue
		}
		scoped := &Handler{name: h.name, bindings: make([]Binding, len(h.bindings))}
		for i, b := range h.bindings {
			b.Path = Join(prefix, b.Path)
			scoped.bindings[i] = b
		}
		out = append(out, scoped)
	}
	return out
}

// Join joins a scope prefix and a path with exactly one separator.
// An empty or "/" path yields the prefix alone: Join("/api", "/") is "/api".
func Join(prefix, p string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	rest := strings.TrimLeft(p, "/")
	if rest == "" {
		// A bare "/" under a scope addresses the scope itself.
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + rest
}

// Must returns h or panics with err.
func Must(h *Handler, err error) *Handler {
	if err != nil {
		panic(err)
	}
	return h
}

// Register submits handlers to the Handlers catalog.
func Register(handlers ...*Handler) {
	for _, h := range handlers {
		if h != nil {
			Handlers.Submit(h)
		}
	}
}

// funcName returns the short name of fn, for example "blog.hello".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() == reflect.Func && !v.IsNil() {
		if f := runtime.FuncForPC(v.Pointer()); f != nil {
			return path.Base(f.Name())
		}
	}
	return fmt.Sprintf("%T", fn)
}
