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

// Package inject declares services as explicit field-level injection plans.
//
// A service is a struct. Its Descriptor lists, in declaration order, how each
// injected field is obtained: from the component registry, from a
// configuration subtree, or from a constructor function fed with fields
// declared before it. Descriptors are validated when they are created, so a
// malformed declaration fails at package initialization when MustDescribe
// and Register are used from init().
//
//	type BlogService struct {
//		Mongo *mongo.Service
//		Cfg   BlogConfig
//	}
//
//	func init() {
//		inject.Register(inject.MustDescribe("blog",
//			inject.Component(func(s *BlogService) **mongo.Service { return &s.Mongo }),
//			inject.Config(func(s *BlogService) *BlogConfig { return &s.Cfg }),
//		))
//	}
package inject

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/catalog"
	"dirpx.dev/boot/naming"
	"dirpx.dev/boot/registry"
	"dirpx.dev/boot/resolver"
)

// Provider builds a fresh prototype-scoped service on every call.
type Provider[S any] func(ctx context.Context) (*S, error)

// Descriptor is the validated injection plan of service S.
type Descriptor[S any] struct {
	prefix     string
	injections []apis.Injection
	prototype  bool
	order      int
}

// Ensure Descriptor implements the plan and plugin contracts.
var (
	_ apis.Plan      = (*Descriptor[struct{}])(nil)
	_ apis.Installer = (*Descriptor[struct{}])(nil)
	_ apis.Ordered   = (*Descriptor[struct{}])(nil)
	_ apis.Namer     = (*Descriptor[struct{}])(nil)
)

// Describe validates fields against S and returns its descriptor.
// prefix is the service's configuration prefix and may be empty when no
// field reads configuration at it.
func Describe[S any](prefix string, fields ...Field[S]) (*Descriptor[S], error) {
	service := naming.For[S]()
	if reflect.TypeFor[S]().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrNotAField, service)
	}
	sh := newShape[S](prefix)
	d := &Descriptor[S]{prefix: prefix, injections: make([]apis.Injection, 0, len(fields))}
	for i, f := range fields {
		if f == nil {
			return nil, shapeError(service, i, ErrNilAccessor)
		}
		if err := f.declare(sh); err != nil {
			return nil, shapeError(service, i, err)
		}
		d.injections = append(d.injections, f)
	}
	return d, nil
}

// MustDescribe is like Describe but panics on a malformed declaration.
func MustDescribe[S any](prefix string, fields ...Field[S]) *Descriptor[S] {
	d, err := Describe(prefix, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Prototype marks S as prototype scoped: a Provider[S] is registered
// instead of a *S singleton.
func (d *Descriptor[S]) Prototype() *Descriptor[S] {
	d.prototype = true
	return d
}

// WithOrder sets the installation priority within the service catalog.
func (d *Descriptor[S]) WithOrder(order int) *Descriptor[S] {
	d.order = order
	return d
}

// Service returns the struct type S.
func (d *Descriptor[S]) Service() reflect.Type { return reflect.TypeFor[S]() }

// Prefix returns the service configuration prefix.
func (d *Descriptor[S]) Prefix() string { return d.prefix }

// Injections returns the field injections in declaration order.
func (d *Descriptor[S]) Injections() []apis.Injection {
	return append([]apis.Injection(nil), d.injections...)
}

// Order returns the installation priority.
func (d *Descriptor[S]) Order() int { return d.order }

// Name returns the service name.
func (d *Descriptor[S]) Name() string { return naming.For[S]() }

// Resolve builds a new S against the given registries.
func (d *Descriptor[S]) Resolve(ctx context.Context, components apis.ComponentRegistry, cfg apis.ConfigRegistry) (*S, error) {
	return resolver.Resolve[S](ctx, d, components, cfg)
}

// Install resolves S and registers it into b.
func (d *Descriptor[S]) Install(ctx context.Context, b apis.AppBuilder) error {
	log := b.Logger().With(zap.String("service", d.Name()))
	components, cfg := b.Components(), b.Config()
	if d.prototype {
		p := Provider[S](func(ctx context.Context) (*S, error) {
			return d.Resolve(ctx, components, cfg)
		})
		if err := registry.Insert(components, p); err != nil {
			return err
		}
		log.Debug("prototype service registered")
		return nil
	}
	s, err := d.Resolve(ctx, components, cfg)
	if err != nil {
		return err
	}
	if err := registry.Insert(components, s); err != nil {
		return err
	}
	log.Debug("service registered", zap.Int("fields", len(d.injections)))
	return nil
}

// Register submits d to the process-wide service catalog.
// It is meant to be called from init().
func Register[S any](d *Descriptor[S]) *Descriptor[S] {
	catalog.Services.Submit(d)
	return d
}
