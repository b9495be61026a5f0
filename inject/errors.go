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
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/boot/naming"
)

var (
	// ErrNotAField is returned when an accessor does not address a direct field of the service.
	ErrNotAField = errors.New("boot(inject): accessor does not address a field of the service")
	// ErrFieldRedeclared is returned when two injections write the same field.
	ErrFieldRedeclared = errors.New("boot(inject): field declared more than once")
	// ErrForwardReference is returned when a function injection depends on a field not declared before it.
	ErrForwardReference = errors.New("boot(inject): dependency is not declared before its use")
	// ErrNoPrefix is returned when a config injection has no prefix to read from.
	ErrNoPrefix = errors.New("boot(inject): config injection without a prefix")
	// ErrNilAccessor is returned for nil accessors or constructors.
	ErrNilAccessor = errors.New("boot(inject): nil accessor or constructor")
	// ErrComponentNotFound matches every *ComponentNotFoundError.
	ErrComponentNotFound = errors.New("boot(inject): component not found")
	// ErrConstruct matches every *ConstructError.
	ErrConstruct = errors.New("boot(inject): constructor failed")
)

// ComponentNotFoundError reports a component injection whose type was never registered.
type ComponentNotFoundError struct {
	Service string
	Field   string
	Type    reflect.Type
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("boot(inject): %s.%s: component %s not found", e.Service, e.Field, naming.Type(e.Type))
}

// Is makes errors.Is(err, ErrComponentNotFound) hold.
func (e *ComponentNotFoundError) Is(target error) bool { return target == ErrComponentNotFound }

// ConstructError reports a failing function injection.
type ConstructError struct {
	Service string
	Field   string
	Err     error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("boot(inject): %s.%s: %v", e.Service, e.Field, e.Err)
}

// Is makes errors.Is(err, ErrConstruct) hold.
func (e *ConstructError) Is(target error) bool { return target == ErrConstruct }

// Unwrap returns the constructor's error.
func (e *ConstructError) Unwrap() error { return e.Err }

// shapeError annotates a declaration problem with the service and field position.
func shapeError(service string, index int, err error) error {
	return fmt.Errorf("%w (service %s, injection #%d)", err, service, index)
}
