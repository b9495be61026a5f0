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

// Package resolver evaluates injection plans against the component and
// configuration registries.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/naming"
)

var (
	// ErrNilPlan is returned when a nil plan is resolved.
	ErrNilPlan = errors.New("boot(resolver): nil plan")
	// ErrPlanMismatch is returned when a plan builds a different type than requested.
	ErrPlanMismatch = errors.New("boot(resolver): plan builds a different service type")
)

// Resolve builds a new S by running every injection of p in declaration
// order. The first failing injection aborts resolution and no partially
// built value is returned.
func Resolve[S any](ctx context.Context, p apis.Plan, components apis.ComponentRegistry, cfg apis.ConfigRegistry) (*S, error) {
	if p == nil {
		return nil, ErrNilPlan
	}
	if want := reflect.TypeFor[S](); p.Service() != want {
		return nil, fmt.Errorf("%w: %s, want %s", ErrPlanMismatch, naming.Type(p.Service()), naming.Type(want))
	}
	target := new(S)
	if err := Into(ctx, p, target, components, cfg); err != nil {
		return nil, err
	}
	return target, nil
}

// Into runs p against an existing target pointer.
// On failure target may hold some resolved fields and must be discarded.
func Into(ctx context.Context, p apis.Plan, target any, components apis.ComponentRegistry, cfg apis.ConfigRegistry) error {
	env := apis.InjectionEnv{
		Service:    naming.Type(p.Service()),
		Prefix:     p.Prefix(),
		Components: components,
		Config:     cfg,
	}
	for _, in := range p.Injections() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.Inject(ctx, target, env); err != nil {
			return err
		}
	}
	return nil
}
