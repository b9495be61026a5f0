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

package inject

import (
	"context"
	"fmt"
	"reflect"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/config"
)

// Field is one field injection of service S.
// Values are created by Component, Config, ConfigAt and the Func constructors.
type Field[S any] interface {
	apis.Injection
	declare(sh *shape[S]) error
}

// shape tracks the fields declared so far while a descriptor is validated.
type shape[S any] struct {
	probe    *S
	declared map[int]bool
	prefix   string
}

func newShape[S any](prefix string) *shape[S] {
	return &shape[S]{probe: new(S), declared: make(map[int]bool), prefix: prefix}
}

// locate finds the direct struct field of S addressed by accessor.
func locate[S, F any](sh *shape[S], accessor func(*S) *F) (idx int, sf reflect.StructField, err error) {
	if accessor == nil {
		return -1, sf, ErrNilAccessor
	}
	st := reflect.TypeFor[S]()
	if st.Kind() != reflect.Struct {
		return -1, sf, fmt.Errorf("%w: %s is not a struct", ErrNotAField, st)
	}
	defer func() {
		if r := recover(); r != nil {
			idx, err = -1, fmt.Errorf("%w: accessor panicked: %v", ErrNotAField, r)
		}
	}()
	fp := accessor(sh.probe)
	if fp == nil {
		return -1, sf, ErrNotAField
	}
	addr := reflect.ValueOf(fp).Pointer()
	base := reflect.ValueOf(sh.probe).Elem()
	ft := reflect.TypeFor[F]()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Type == ft && base.Field(i).Addr().Pointer() == addr {
			return i, f, nil
		}
	}
	return -1, sf, fmt.Errorf("%w: no field of type %s", ErrNotAField, ft)
}

// target binds a field accessor and its resolved metadata.
type target[S, F any] struct {
	accessor func(*S) *F
	name     string
}

func (t *target[S, F]) Field() string { return t.name }

func (t *target[S, F]) bind(sh *shape[S]) error {
	idx, sf, err := locate(sh, t.accessor)
	if err != nil {
		return err
	}
	if sh.declared[idx] {
		return fmt.Errorf("%w: %s", ErrFieldRedeclared, sf.Name)
	}
	sh.declared[idx] = true
	t.name = sf.Name
	return nil
}

func (t *target[S, F]) set(dst any, v F) {
	*t.accessor(dst.(*S)) = v
}

func (t *target[S, F]) get(src any) F {
	return *t.accessor(src.(*S))
}

// dependency checks that accessor addresses a field declared earlier.
func dependency[S, F any](sh *shape[S], accessor func(*S) *F) (*target[S, F], error) {
	idx, sf, err := locate(sh, accessor)
	if err != nil {
		return nil, err
	}
	if !sh.declared[idx] {
		return nil, fmt.Errorf("%w: %s", ErrForwardReference, sf.Name)
	}
	return &target[S, F]{accessor: accessor, name: sf.Name}, nil
}

// Component injects the registered singleton of the field's type.
func Component[S, F any](field func(*S) *F) Field[S] {
	return &component[S, F]{target: target[S, F]{accessor: field}}
}

type component[S, F any] struct {
	target[S, F]
}

func (c *component[S, F]) declare(sh *shape[S]) error { return c.bind(sh) }

func (c *component[S, F]) Inject(_ context.Context, dst any, env apis.InjectionEnv) error {
	t := reflect.TypeFor[F]()
	v, ok := env.Components.Get(t)
	if !ok {
		return &ComponentNotFoundError{Service: env.Service, Field: c.name, Type: t}
	}
	c.set(dst, v.(F))
	return nil
}

// Config injects the configuration subtree at the service prefix.
func Config[S, F any](field func(*S) *F) Field[S] {
	return &configField[S, F]{target: target[S, F]{accessor: field}}
}

// ConfigAt injects the configuration subtree at an explicit prefix.
func ConfigAt[S, F any](prefix string, field func(*S) *F) Field[S] {
	return &configField[S, F]{target: target[S, F]{accessor: field}, prefix: prefix}
}

type configField[S, F any] struct {
	target[S, F]
	prefix string
}

func (c *configField[S, F]) declare(sh *shape[S]) error {
	if err := c.bind(sh); err != nil {
		return err
	}
	if c.prefix == "" && sh.prefix == "" {
		return fmt.Errorf("%w: %s", ErrNoPrefix, c.name)
	}
	return nil
}

func (c *configField[S, F]) Inject(_ context.Context, dst any, env apis.InjectionEnv) error {
	prefix := c.prefix
	if prefix == "" {
		prefix = env.Prefix
	}
	v, err := config.Extract[F](env.Config, prefix)
	if err != nil {
		return fmt.Errorf("boot(inject): %s.%s: %w", env.Service, c.name, err)
	}
	c.set(dst, v)
	return nil
}

// Func0 injects the result of ctor.
func Func0[S, F any](field func(*S) *F, ctor func(ctx context.Context) (F, error)) Field[S] {
	return &funcField[S, F]{
		target: target[S, F]{accessor: field},
		check:  func(*shape[S]) error { return nonNil(ctor) },
		build:  func(ctx context.Context, _ any) (F, error) { return ctor(ctx) },
	}
}

// Func1 injects the result of ctor called with the value of an earlier field.
func Func1[S, F, A any](field func(*S) *F, a func(*S) *A, ctor func(ctx context.Context, a A) (F, error)) Field[S] {
	f := &funcField[S, F]{target: target[S, F]{accessor: field}}
	var da *target[S, A]
	f.check = func(sh *shape[S]) (err error) {
		if err = nonNil(ctor); err != nil {
			return err
		}
		da, err = dependency(sh, a)
		return err
	}
	f.build = func(ctx context.Context, src any) (F, error) {
		return ctor(ctx, da.get(src))
	}
	return f
}

// Func2 injects the result of ctor called with the values of two earlier fields.
func Func2[S, F, A, B any](field func(*S) *F, a func(*S) *A, b func(*S) *B, ctor func(ctx context.Context, a A, b B) (F, error)) Field[S] {
	f := &funcField[S, F]{target: target[S, F]{accessor: field}}
	var (
		da *target[S, A]
		db *target[S, B]
	)
	f.check = func(sh *shape[S]) (err error) {
		if err = nonNil(ctor); err != nil {
			return err
		}
		if da, err = dependency(sh, a); err != nil {
			return err
		}
		db, err = dependency(sh, b)
		return err
	}
	f.build = func(ctx context.Context, src any) (F, error) {
		return ctor(ctx, da.get(src), db.get(src))
	}
	return f
}

type funcField[S, F any] struct {
	target[S, F]
	check func(sh *shape[S]) error
	build func(ctx context.Context, src any) (F, error)
}

// Dependencies are checked before the field itself is declared,
// so a function cannot consume its own result.
func (f *funcField[S, F]) declare(sh *shape[S]) error {
	if err := f.check(sh); err != nil {
		return err
	}
	return f.bind(sh)
}

func (f *funcField[S, F]) Inject(ctx context.Context, dst any, env apis.InjectionEnv) error {
	v, err := f.build(ctx, dst)
	if err != nil {
		return &ConstructError{Service: env.Service, Field: f.name, Err: err}
	}
	f.set(dst, v)
	return nil
}

func nonNil(fn any) error {
	if v := reflect.ValueOf(fn); !v.IsValid() || v.IsNil() {
		return ErrNilAccessor
	}
	return nil
}
