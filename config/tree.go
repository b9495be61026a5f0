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

package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"dirpx.dev/boot/apis"
)

// Tree is an immutable configuration tree addressed by dotted prefixes.
// Keys are case-insensitive. A Tree is safe for concurrent use.
type Tree struct {
	root map[string]any
}

// Ensure Tree implements apis.ConfigRegistry.
var _ apis.ConfigRegistry = (*Tree)(nil)

// FromMap builds a Tree from a raw nested key/value tree. Dotted keys are
// expanded, so {"web.port": 80} and {"web": {"port": 80}} are equivalent.
// The input is copied; later changes to it are not observed.
func FromMap(raw map[string]any) *Tree {
	settings := make(map[string]any, len(raw))
	for k, v := range raw {
		setPath(settings, k, v)
	}
	return newTree(settings)
}

// Empty returns a Tree without any keys.
func Empty() *Tree {
	return &Tree{root: map[string]any{}}
}

func newTree(settings map[string]any) *Tree {
	root, _ := copyValue(settings).(map[string]any)
	if root == nil {
		root = map[string]any{}
	}
	return &Tree{root: root}
}

// Has reports whether a non-nil subtree exists at prefix.
func (t *Tree) Has(prefix string) bool {
	v, ok := t.lookup(prefix)
	return ok && v != nil
}

// Raw returns a deep copy of the subtree at prefix.
func (t *Tree) Raw(prefix string) (any, bool) {
	v, ok := t.lookup(prefix)
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Keys returns every leaf key in sorted order.
func (t *Tree) Keys() []string {
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
				walk(key, sub)
				continue
			}
			keys = append(keys, key)
		}
	}
	walk("", t.root)
	sort.Strings(keys)
	return keys
}

// Unmarshal decodes the subtree at prefix into target.
func (t *Tree) Unmarshal(prefix string, target any) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrNilTarget
	}
	raw, ok := t.lookup(prefix)
	if !ok || raw == nil {
		return &MissingError{Prefix: prefix}
	}
	return decode(prefix, copyValue(raw), target)
}

// YAML renders the whole tree as YAML, for diagnostics.
func (t *Tree) YAML() ([]byte, error) {
	out, err := yaml.Marshal(t.root)
	if err != nil {
		return nil, fmt.Errorf("boot(config): render yaml: %w", err)
	}
	return out, nil
}

func (t *Tree) lookup(prefix string) (any, bool) {
	if t == nil {
		return nil, false
	}
	if prefix == "" {
		return t.root, true
	}
	var cur any = t.root
	for _, part := range strings.Split(strings.ToLower(prefix), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath stores v at the dotted key, creating intermediate maps.
func setPath(root map[string]any, key string, v any) {
	parts := strings.Split(strings.ToLower(key), ".")
	m := root
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	last := parts[len(parts)-1]
	if sub, ok := normalize(v).(map[string]any); ok {
		if existing, ok := m[last].(map[string]any); ok {
			for k, sv := range sub {
				setPath(existing, k, sv)
			}
			return
		}
		nested := make(map[string]any, len(sub))
		for k, sv := range sub {
			setPath(nested, k, sv)
		}
		m[last] = nested
		return
	}
	m[last] = v
}

// normalize turns map[any]any and map[string]T into map[string]any.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return v
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}

// copyValue deep-copies maps and slices so a Tree never shares state with its inputs.
func copyValue(v any) any {
	switch x := normalize(v).(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[strings.ToLower(k)] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return x
	}
}
