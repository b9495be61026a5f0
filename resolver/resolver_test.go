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

package resolver_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/registry"
	"dirpx.dev/boot/resolver"
)

type service struct {
	A string
	B string
}

// recording writes its name into a field and remembers the call order.
type recording struct {
	name  string
	order *[]string
	set   func(*service, string)
}

func (r recording) Field() string { return r.name }

func (r recording) Inject(_ context.Context, target any, env apis.InjectionEnv) error {
	*r.order = append(*r.order, r.name)
	r.set(target.(*service), env.Service+"/"+env.Prefix)
	return nil
}

type plan struct {
	t          reflect.Type
	injections []apis.Injection
}

func (p plan) Service() reflect.Type         { return p.t }
func (p plan) Prefix() string                { return "svc" }
func (p plan) Injections() []apis.Injection  { return p.injections }

func TestResolve_RunsInjectionsInOrder(t *testing.T) {
	var order []string
	p := plan{t: reflect.TypeOf(service{}), injections: []apis.Injection{
		recording{name: "B", order: &order, set: func(s *service, v string) { s.B = v }},
		recording{name: "A", order: &order, set: func(s *service, v string) { s.A = v }},
	}}

	s, err := resolver.Resolve[service](context.Background(), p, registry.New(), config.Empty())
	if err != nil {
		t.Fatalf("Resolve: unexpected error: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"B", "A"}) {
		t.Fatalf("order = %v, want [B A]", order)
	}
	if s.A != "resolver_test.service/svc" {
		t.Fatalf("A = %q, want resolver_test.service/svc", s.A)
	}
}

func TestResolve_Errors(t *testing.T) {
	if _, err := resolver.Resolve[service](context.Background(), nil, registry.New(), config.Empty()); err != resolver.ErrNilPlan {
		t.Fatalf("nil plan: want ErrNilPlan, got %v", err)
	}

	p := plan{t: reflect.TypeOf(0)}
	_, err := resolver.Resolve[service](context.Background(), p, registry.New(), config.Empty())
	if err == nil || !errors.Is(err, resolver.ErrPlanMismatch) {
		t.Fatalf("mismatch: want ErrPlanMismatch, got %v", err)
	}
}
