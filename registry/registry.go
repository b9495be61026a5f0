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

// Package registry implements the component registry: a type-keyed store of
// process-wide singletons.
//
// A registry starts in its Building form, owned by exactly one goroutine (the
// application builder). Components are inserted once; collection components
// can be accumulated element by element into a builder-owned slot. Seal
// converts the Building form into an immutable Sealed registry. Accumulated
// slots become plain []E components at that point and are never mutated
// again, so a Sealed registry can be read from any goroutine without locks.
package registry

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/naming"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("boot(registry): nil reflect.Type provided")
	// ErrNilComponent is returned when a nil component is inserted.
	ErrNilComponent = errors.New("boot(registry): nil component provided")
	// ErrDuplicateComponent matches attempts to register a type twice.
	ErrDuplicateComponent = errors.New("boot(registry): component already registered")
	// ErrTypeMismatch is returned when a value is not assignable to the type it is registered under.
	ErrTypeMismatch = errors.New("boot(registry): component does not match its type")
	// ErrSealed is returned by mutations attempted after Seal.
	ErrSealed = errors.New("boot(registry): registry is sealed")
)

// DuplicateError reports a second registration of Type.
// The first registration is kept.
type DuplicateError struct {
	Type reflect.Type
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("boot(registry): component %s already registered", naming.Type(e.Type))
}

// Is makes errors.Is(err, ErrDuplicateComponent) hold.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateComponent }

// New returns an empty registry in the Building state.
func New() *Building {
	return &Building{
		components: make(map[reflect.Type]any),
		slots:      make(map[reflect.Type]reflect.Value),
	}
}

// Building is the mutable, builder-owned registry.
// It is not safe for concurrent use.
type Building struct {
	// components maps a type to its singleton.
	components map[reflect.Type]any
	// slots maps a collection type []E to its accumulating slice.
	slots map[reflect.Type]reflect.Value
	// order remembers insertion order for diagnostics.
	order []reflect.Type
	// sealed is set once Seal has run.
	sealed *Sealed
}

// Ensure Building implements apis.MutableComponentRegistry.
var _ apis.MutableComponentRegistry = (*Building)(nil)

// Insert registers v as the singleton for t.
// A type may be inserted once; a second insert fails with a *DuplicateError.
func (r *Building) Insert(t reflect.Type, v any) error {
	if r.sealed != nil {
		return ErrSealed
	}
	if t == nil {
		return ErrNilType
	}
	if v == nil {
		return ErrNilComponent
	}
	if vt := reflect.TypeOf(v); !vt.AssignableTo(t) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, naming.Type(vt), naming.Type(t))
	}
	if r.has(t) {
		return &DuplicateError{Type: t}
	}
	r.components[t] = v
	r.order = append(r.order, t)
	return nil
}

// Accumulate appends item to the collection component []elem.
// The first call creates the collection; a collection that was inserted
// directly cannot be accumulated into.
func (r *Building) Accumulate(elem reflect.Type, item any) error {
	if r.sealed != nil {
		return ErrSealed
	}
	if elem == nil {
		return ErrNilType
	}
	iv := reflect.ValueOf(item)
	if !iv.IsValid() {
		return ErrNilComponent
	}
	if !iv.Type().AssignableTo(elem) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, naming.Type(iv.Type()), naming.Type(elem))
	}
	st := reflect.SliceOf(elem)
	if _, direct := r.components[st]; direct {
		return &DuplicateError{Type: st}
	}
	slot, ok := r.slots[st]
	if !ok {
		slot = reflect.MakeSlice(st, 0, 1)
		r.order = append(r.order, st)
	}
	r.slots[st] = reflect.Append(slot, iv)
	return nil
}

// Get returns the component for t. While Building, an accumulated collection
// is returned as a copy that the caller may keep.
func (r *Building) Get(t reflect.Type) (any, bool) {
	if r.sealed != nil {
		return r.sealed.Get(t)
	}
	if t == nil {
		return nil, false
	}
	if v, ok := r.components[t]; ok {
		return v, true
	}
	if slot, ok := r.slots[t]; ok {
		return copySlice(t, slot).Interface(), true
	}
	return nil, false
}

// Has reports whether t is registered or accumulated.
func (r *Building) Has(t reflect.Type) bool {
	if r.sealed != nil {
		return r.sealed.Has(t)
	}
	return r.has(t)
}

func (r *Building) has(t reflect.Type) bool {
	if _, ok := r.components[t]; ok {
		return true
	}
	_, ok := r.slots[t]
	return ok
}

// Entries returns a snapshot in registration order.
func (r *Building) Entries() []apis.Entry {
	if r.sealed != nil {
		return r.sealed.Entries()
	}
	entries := make([]apis.Entry, 0, len(r.order))
	for _, t := range r.order {
		v, _ := r.Get(t)
		entries = append(entries, apis.Entry{Type: t, Value: v})
	}
	return entries
}

// Count returns the number of registered components.
func (r *Building) Count() int {
	if r.sealed != nil {
		return r.sealed.Count()
	}
	return len(r.order)
}

// Sealed reports whether Seal has been called.
func (r *Building) Sealed() bool {
	return r.sealed != nil
}

// Seal freezes the registry. Accumulated collections are converted into
// regular components exactly once. Calling Seal again returns the same
// Sealed registry.
func (r *Building) Seal() *Sealed {
	if r.sealed != nil {
		return r.sealed
	}
	components := make(map[reflect.Type]any, len(r.components)+len(r.slots))
	for t, v := range r.components {
		components[t] = v
	}
	collections := make(map[reflect.Type]reflect.Value, len(r.slots))
	for t, slot := range r.slots {
		collections[t] = copySlice(t, slot)
		components[t] = nil
	}
	r.sealed = &Sealed{
		components:  components,
		collections: collections,
		order:       append([]reflect.Type(nil), r.order...),
	}
	r.components = nil
	r.slots = nil
	return r.sealed
}

// Sealed is the immutable registry handed to a running application.
// It is safe for concurrent use. Accumulated collections are returned as
// fresh copies, so a reader writing into its slice never affects another.
type Sealed struct {
	components map[reflect.Type]any
	// collections holds the accumulated []E values; their components entry is nil.
	collections map[reflect.Type]reflect.Value
	order       []reflect.Type
}

// copySlice returns a copy of slot with length and capacity equal.
func copySlice(t reflect.Type, slot reflect.Value) reflect.Value {
	out := reflect.MakeSlice(t, slot.Len(), slot.Len())
	reflect.Copy(out, slot)
	return out
}

// value returns the component for t, copying accumulated collections.
func (r *Sealed) value(t reflect.Type) (any, bool) {
	if c, ok := r.collections[t]; ok {
		return copySlice(t, c).Interface(), true
	}
	v, ok := r.components[t]
	return v, ok
}

// Ensure Sealed implements apis.ComponentRegistry.
var _ apis.ComponentRegistry = (*Sealed)(nil)

// Get returns the component for t.
func (r *Sealed) Get(t reflect.Type) (any, bool) {
	if t == nil {
		return nil, false
	}
	return r.value(t)
}

// Has reports whether t is registered.
func (r *Sealed) Has(t reflect.Type) bool {
	_, ok := r.components[t]
	return ok
}

// Entries returns a snapshot in registration order.
func (r *Sealed) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, len(r.order))
	for _, t := range r.order {
		v, _ := r.value(t)
		entries = append(entries, apis.Entry{Type: t, Value: v})
	}
	return entries
}

// Count returns the number of registered components.
func (r *Sealed) Count() int {
	return len(r.components)
}
