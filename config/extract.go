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
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/naming"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Extract decodes the subtree rooted at prefix into a new T.
//
// It fails with a *MissingError when the subtree is absent, a
// *TypeMismatchError when it does not fit T, and an *InvalidError when the
// decoded value violates its `validate` tags.
func Extract[T any](r apis.ConfigRegistry, prefix string) (T, error) {
	var out T
	if err := r.Unmarshal(prefix, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Get extracts a Configurable shape at its own prefix.
func Get[T apis.Configurable](r apis.ConfigRegistry) (T, error) {
	var zero T
	return Extract[T](r, zero.ConfigPrefix())
}

// Encode renders v as a raw tree rooted at prefix, the inverse of Extract:
// Extract[T](FromMap(Encode(p, v)), p) reproduces v.
func Encode(prefix string, v any) (map[string]any, error) {
	var raw any
	if rv := reflect.Indirect(reflect.ValueOf(v)); rv.Kind() == reflect.Struct {
		m := map[string]any{}
		if err := mapstructure.Decode(v, &m); err != nil {
			return nil, fmt.Errorf("boot(config): encode %s: %w", naming.Of(v), err)
		}
		raw = m
	} else {
		raw = v
	}
	if prefix == "" {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("boot(config): encode %s: only structs and maps may be encoded at the root", naming.Of(v))
		}
		return m, nil
	}
	root := map[string]any{}
	setPath(root, prefix, raw)
	return root, nil
}

func decode(prefix string, raw any, target any) error {
	shape := naming.Type(reflect.TypeOf(target).Elem())
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return &TypeMismatchError{Prefix: prefix, Shape: shape, Detail: err.Error(), Err: err}
	}
	if err := dec.Decode(raw); err != nil {
		return &TypeMismatchError{Prefix: prefix, Shape: shape, Detail: mismatchDetail(err), Err: err}
	}

	rv := reflect.ValueOf(target).Elem()
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(rv.Interface()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &InvalidError{Prefix: prefix, Shape: shape, Detail: validationDetail(verrs), Err: err}
		}
		return &InvalidError{Prefix: prefix, Shape: shape, Detail: err.Error(), Err: err}
	}
	return nil
}

func mismatchDetail(err error) string {
	var merr *mapstructure.Error
	if errors.As(err, &merr) {
		return strings.Join(merr.Errors, "; ")
	}
	return err.Error()
}

func validationDetail(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
