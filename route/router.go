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

package route

import (
	"fmt"
	"net/http"
	"strings"
)

// Router is a fragment of bindings that can be merged with other fragments.
// It is not safe for concurrent use.
type Router struct {
	bindings []Binding
	seen     map[string]bool
}

// NewRouter returns an empty fragment.
func NewRouter() *Router {
	return &Router{seen: make(map[string]bool)}
}

func routeKey(verb, path string) string { return verb + " " + path }

// Add binds h to verb and path.
func (r *Router) Add(verb, path string, h http.Handler) error {
	v, err := parseVerb(verb)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %s %s", ErrBadHandler, v, path)
	}
	if r.seen[routeKey(v, path)] {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, v, path)
	}
	r.seen[routeKey(v, path)] = true
	r.bindings = append(r.bindings, Binding{Verb: v, Path: path, Handler: h})
	return nil
}

// Merge adds every binding of other. Nothing is added if any binding conflicts.
func (r *Router) Merge(other *Router) error {
	if other == nil {
		return nil
	}
	for _, b := range other.bindings {
		if r.seen[routeKey(b.Verb, b.Path)] {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, b.Verb, b.Path)
		}
	}
	for _, b := range other.bindings {
		if err := r.Add(b.Verb, b.Path, b.Handler); err != nil {
			return err
		}
	}
	return nil
}

// Bindings returns the bindings in insertion order.
func (r *Router) Bindings() []Binding {
	return append([]Binding(nil), r.bindings...)
}

// Len returns the number of bindings.
func (r *Router) Len() int { return len(r.bindings) }
