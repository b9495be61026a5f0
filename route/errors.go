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

package route

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownVerb is returned for a method outside the supported set.
	ErrUnknownVerb = errors.New("boot(route): HTTP method must be one of GET, POST, PUT, DELETE, HEAD, OPTIONS, TRACE, PATCH (uppercase)")
	// ErrDuplicateVerb is returned when a method is declared more than once for a path.
	ErrDuplicateVerb = errors.New("boot(route): HTTP method defined more than once")
	// ErrZeroVerbs is returned when a declaration names no method.
	ErrZeroVerbs = errors.New("boot(route): at least one method is required")
	// ErrUnknownAttributeKey is returned for attributes other than method.
	ErrUnknownAttributeKey = errors.New("boot(route): unknown attribute key; allowed: method")
	// ErrVerbForbidden is returned when a single-method declaration carries a method attribute.
	ErrVerbForbidden = errors.New("boot(route): HTTP method forbidden here; to handle multiple methods use Route")
	// ErrMissingReturnType is returned for handler functions without results.
	ErrMissingReturnType = errors.New("boot(route): function has no return type; cannot be used as handler")
	// ErrBadHandler is returned for values that cannot be adapted into a handler.
	ErrBadHandler = errors.New("boot(route): unsupported handler signature")
	// ErrInvalidPath is returned for paths that do not start with a slash.
	ErrInvalidPath = errors.New("boot(route): path must start with /")
	// ErrDuplicateRoute is returned when a router already binds a method and path.
	ErrDuplicateRoute = errors.New("boot(route): route already bound")
)

// DeclarationError names the handler and path of a rejected declaration.
type DeclarationError struct {
	Handler string
	Path    string
	Err     error
}

func (e *DeclarationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v (handler %s)", e.Err, e.Handler)
	}
	return fmt.Sprintf("%v (handler %s, path %q)", e.Err, e.Handler, e.Path)
}

// Unwrap returns the underlying sentinel.
func (e *DeclarationError) Unwrap() error { return e.Err }

// StatusError carries the HTTP status a handler error should be rendered with.
type StatusError struct {
	Code int
	Err  error
}

// Status wraps err so that it renders with the given status code.
func Status(code int, err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Code: code, Err: err}
}

func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of err: the code of a wrapped
// *StatusError, otherwise 500.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Code > 0 {
		return se.Code
	}
	return http.StatusInternalServerError
}
