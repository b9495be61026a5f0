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

// Package catalog holds process-wide, append-only plugin catalogs.
//
// Packages contribute entries from their init() functions, so an application
// collects every plugin linked into the binary without a central list.
// Iteration order is stable within a run (package initialization order) but
// does not follow source declaration order. Entries that need a specific
// position implement apis.Ordered.
package catalog

import (
	"slices"
	"sync"
	"sync/atomic"

	"dirpx.dev/boot/apis"
)

// Services collects every self-registering service installer.
var Services = New[apis.Installer]()

// Catalog is an append-only list of entries of type T.
// Writers serialize on a mutex and publish an immutable snapshot; readers
// are lock-free.
type Catalog[T any] struct {
	mu   sync.Mutex
	snap atomic.Pointer[[]T]
}

// New returns an empty catalog.
func New[T any]() *Catalog[T] {
	c := &Catalog[T]{}
	empty := []T(nil)
	c.snap.Store(&empty)
	return c
}

// Submit appends entries to the catalog.
func (c *Catalog[T]) Submit(entries ...T) {
	if len(entries) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.snap.Load()
	next := make([]T, 0, len(old)+len(entries))
	next = append(next, old...)
	next = append(next, entries...)

	// Store the new snapshot atomically.
	c.snap.Store(&next)
}

// Entries returns the current entries in submission order.
// The returned slice must not be modified.
func (c *Catalog[T]) Entries() []T {
	return *c.snap.Load()
}

// Len returns the number of entries.
func (c *Catalog[T]) Len() int {
	return len(*c.snap.Load())
}

// Ordered returns a copy of the entries sorted by apis.Ordered priority.
// Entries without a priority count as 0; ties keep submission order.
func (c *Catalog[T]) Ordered() []T {
	out := slices.Clone(c.Entries())
	slices.SortStableFunc(out, func(a, b T) int {
		return OrderOf(a) - OrderOf(b)
	})
	return out
}

// OrderOf returns v's priority, or 0 if v does not implement apis.Ordered.
func OrderOf(v any) int {
	if o, ok := v.(apis.Ordered); ok {
		return o.Order()
	}
	return 0
}
