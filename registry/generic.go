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

package registry

import (
	"fmt"
	"reflect"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/naming"
)

// Insert registers v as the singleton for T.
func Insert[T any](r apis.MutableComponentRegistry, v T) error {
	return r.Insert(reflect.TypeFor[T](), v)
}

// Accumulate appends item to the collection component []E.
func Accumulate[E any](r apis.MutableComponentRegistry, item E) error {
	return r.Accumulate(reflect.TypeFor[E](), item)
}

// Get returns the singleton registered for T.
func Get[T any](r apis.ComponentRegistry) (T, bool) {
	v, ok := r.Get(reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustGet is like Get but panics when T is not registered.
func MustGet[T any](r apis.ComponentRegistry) T {
	v, ok := Get[T](r)
	if !ok {
		panic(fmt.Sprintf("boot(registry): component %s not registered", naming.For[T]()))
	}
	return v
}

// Has reports whether T is registered.
func Has[T any](r apis.ComponentRegistry) bool {
	return r.Has(reflect.TypeFor[T]())
}
