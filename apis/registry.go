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

import "reflect"

// ComponentRegistry is the read side of the component store.
// Components are process-wide singletons keyed by their exact Go type.
type ComponentRegistry interface {
	// Get returns the component registered for t, if any.
	Get(t reflect.Type) (v any, ok bool)
	// Has reports whether a component is registered for t.
	Has(t reflect.Type) bool
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered components.
	Count() int
}

// MutableComponentRegistry is the write side that only exists while an
// application is being built.
type MutableComponentRegistry interface {
	ComponentRegistry
	// Insert registers v as the singleton for t. A type is inserted at most once.
	Insert(t reflect.Type, v any) error
	// Accumulate appends item to the collection component []elem, creating it
	// on first use. It is rejected once the registry has been sealed.
	Accumulate(elem reflect.Type, item any) error
}

// Entry is a single (type, component) association in a registry snapshot.
type Entry struct {
	// Type is the registered reflect.Type.
	Type reflect.Type
	// Value is the registered component.
	Value any
}
