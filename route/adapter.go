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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
)

// Responder writes itself as an HTTP response.
type Responder interface {
	Respond(w http.ResponseWriter, r *http.Request)
}

var (
	ctxType     = reflect.TypeFor[context.Context]()
	requestType = reflect.TypeFor[*http.Request]()
	writerType  = reflect.TypeFor[http.ResponseWriter]()
	errorType   = reflect.TypeFor[error]()
)

type param uint8

const (
	paramContext param = iota
	paramRequest
	paramWriter
)

// adapt compiles fn into an http.Handler. Functions may take any of
// context.Context, *http.Request and http.ResponseWriter, and must return
// (R) or (R, error). Non-function http.Handler values are used as is.
func adapt(fn any) (http.Handler, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil", ErrBadHandler)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		if h, ok := fn.(http.Handler); ok {
			return h, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrBadHandler, t)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("%w: nil function", ErrBadHandler)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrBadHandler, t)
	}

	switch {
	case t.NumOut() == 0:
		return nil, ErrMissingReturnType
	case t.NumOut() > 2:
		return nil, fmt.Errorf("%w: %s returns more than two values", ErrBadHandler, t)
	case t.NumOut() == 2 && t.Out(1) != errorType:
		return nil, fmt.Errorf("%w: second result of %s must be error", ErrBadHandler, t)
	case t.Out(0) == errorType:
		return nil, fmt.Errorf("%w: %s returns only an error", ErrBadHandler, t)
	}

	params := make([]param, t.NumIn())
	for i := range params {
		switch t.In(i) {
		case ctxType:
			params[i] = paramContext
		case requestType:
			params[i] = paramRequest
		case writerType:
			params[i] = paramWriter
		default:
			return nil, fmt.Errorf("%w: unsupported parameter %s", ErrBadHandler, t.In(i))
		}
	}

	hasErr := t.NumOut() == 2
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := make([]reflect.Value, len(params))
		for i, p := range params {
			switch p {
			case paramContext:
				in[i] = reflect.ValueOf(r.Context())
			case paramRequest:
				in[i] = reflect.ValueOf(r)
			case paramWriter:
				in[i] = reflect.ValueOf(w)
			}
		}
		out := v.Call(in)
		if hasErr && !out[1].IsNil() {
			err := out[1].Interface().(error)
			http.Error(w, err.Error(), StatusCode(err))
			return
		}
		render(w, r, out[0].Interface())
	}), nil
}

// render writes a handler result.
func render(w http.ResponseWriter, r *http.Request, res any) {
	switch v := res.(type) {
	case Responder:
		v.Respond(w, r)
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(v))
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(v)
	default:
		WriteJSON(w, http.StatusOK, v)
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
