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

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing matches errors for an absent configuration subtree.
	ErrConfigMissing = errors.New("boot(config): configuration missing")
	// ErrConfigTypeMismatch matches errors for a subtree that cannot be decoded into the requested shape.
	ErrConfigTypeMismatch = errors.New("boot(config): configuration type mismatch")
	// ErrConfigInvalid matches errors for a decoded shape that fails its validate tags.
	ErrConfigInvalid = errors.New("boot(config): configuration invalid")
	// ErrNilTarget is returned when Unmarshal is given something other than a non-nil pointer.
	ErrNilTarget = errors.New("boot(config): target must be a non-nil pointer")
)

// MissingError reports that no configuration exists at Prefix.
type MissingError struct {
	Prefix string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("boot(config): no configuration at prefix %q", e.Prefix)
}

// Is makes errors.Is(err, ErrConfigMissing) hold.
func (e *MissingError) Is(target error) bool { return target == ErrConfigMissing }

// TypeMismatchError reports that the subtree at Prefix is structurally
// incompatible with the requested shape.
type TypeMismatchError struct {
	Prefix string
	Shape  string
	Detail string
	Err    error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("boot(config): prefix %q does not fit %s: %s", e.Prefix, e.Shape, e.Detail)
}

// Is makes errors.Is(err, ErrConfigTypeMismatch) hold.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrConfigTypeMismatch }

func (e *TypeMismatchError) Unwrap() error { return e.Err }

// InvalidError reports that the decoded value at Prefix failed validation.
type InvalidError struct {
	Prefix string
	Shape  string
	Detail string
	Err    error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("boot(config): %s at prefix %q is invalid: %s", e.Shape, e.Prefix, e.Detail)
}

// Is makes errors.Is(err, ErrConfigInvalid) hold.
func (e *InvalidError) Is(target error) bool { return target == ErrConfigInvalid }

func (e *InvalidError) Unwrap() error { return e.Err }
