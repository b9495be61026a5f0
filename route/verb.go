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
	"slices"
)

// verbs is the supported method set in canonical order.
var verbs = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
	http.MethodTrace,
	http.MethodPatch,
}

// Verbs returns the supported HTTP methods.
func Verbs() []string {
	return slices.Clone(verbs)
}

// parseVerb accepts exactly the uppercase method names.
func parseVerb(v string) (string, error) {
	if slices.Contains(verbs, v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVerb, v)
}

// verbSet collects distinct verbs.
type verbSet map[string]bool

func (s verbSet) add(v string) error {
	verb, err := parseVerb(v)
	if err != nil {
		return err
	}
	if s[verb] {
		return fmt.Errorf("%w: %s", ErrDuplicateVerb, verb)
	}
	s[verb] = true
	return nil
}

// sorted returns the verbs in canonical order.
func (s verbSet) sorted() []string {
	out := make([]string, 0, len(s))
	for _, v := range verbs {
		if s[v] {
			out = append(out, v)
		}
	}
	return out
}

// Attr is a key/value routing attribute.
type Attr struct {
	Key   string
	Value string
}

// Method is the method attribute of Route.
func Method(verb string) Attr {
	return Attr{Key: "method", Value: verb}
}

// Attribute builds an arbitrary attribute. Only "method" is understood.
func Attribute(key, value string) Attr {
	return Attr{Key: key, Value: value}
}
