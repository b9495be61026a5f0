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

import (
	"context"
	"reflect"
)

// Injection fills one field of a service under construction.
type Injection interface {
	// Field returns the struct field name this injection writes.
	Field() string
	// Inject resolves the field value and stores it into target,
	// a non-nil pointer to the service struct.
	Inject(ctx context.Context, target any, env InjectionEnv) error
}

// InjectionEnv is what an Injection may read while resolving.
type InjectionEnv struct {
	// Service is the display name of the service being built.
	Service string
	// Prefix is the service's own configuration prefix, if any.
	Prefix string
	// Components holds every component registered so far.
	Components ComponentRegistry
	// Config is the configuration tree.
	Config ConfigRegistry
}

// Plan is a service's field-level injection plan.
type Plan interface {
	// Service returns the struct type the plan builds.
	Service() reflect.Type
	// Prefix returns the service's configuration prefix.
	Prefix() string
	// Injections returns the field injections in declaration order.
	Injections() []Injection
}
