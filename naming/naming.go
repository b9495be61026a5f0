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

// Package naming turns Go values and types into short, stable names for logs
// and error messages, e.g. "*mongo.Client" or "[]route.Router".
package naming

import (
	"path"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/boot/apis"
)

// maxDepth guards against pathological container nesting.
const maxDepth = 8

// typeNameCache caches rendered names by type.
var typeNameCache sync.Map // key: reflect.Type, val: string

// Of returns the name of v. If v implements apis.Namer its Name() wins,
// otherwise the name of its dynamic type is used.
func Of(v any) string {
	if v == nil {
		return "<nil>"
	}
	if n, ok := v.(apis.Namer); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return Type(reflect.TypeOf(v))
}

// Type renders t as "pkg.Type", keeping container decorations
// (pointer, slice, array, map, chan) and shortening generic arguments.
func Type(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if v, ok := typeNameCache.Load(t); ok {
		return v.(string)
	}
	name := render(t, 0)
	typeNameCache.Store(t, name)
	return name
}

// For returns the name of the static type T.
func For[T any]() string {
	return Type(reflect.TypeFor[T]())
}

func render(t reflect.Type, depth int) string {
	if depth >= maxDepth {
		return "..."
	}
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Ptr:
			return "*" + render(t.Elem(), depth+1)
		case reflect.Slice:
			return "[]" + render(t.Elem(), depth+1)
		case reflect.Array:
			return "[" + itoa(t.Len()) + "]" + render(t.Elem(), depth+1)
		case reflect.Map:
			return "map[" + render(t.Key(), depth+1) + "]" + render(t.Elem(), depth+1)
		case reflect.Chan:
			return chanPrefix(t.ChanDir()) + render(t.Elem(), depth+1)
		default:
			// Anonymous struct, func or interface.
			return t.String()
		}
	}

	name := shortenTypeArgs(t.Name())
	if p := t.PkgPath(); p != "" {
		return path.Base(p) + "." + name
	}
	return name
}

func chanPrefix(dir reflect.ChanDir) string {
	switch dir {
	case reflect.RecvDir:
		return "<-chan "
	case reflect.SendDir:
		return "chan<- "
	default:
		return "chan "
	}
}

// shortenTypeArgs rewrites "Box[example.com/x/y.T]" as "Box[y.T]".
func shortenTypeArgs(s string) string {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.WriteString(s[:i])
	start := i
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '[', ']', ',', ' ', '*':
			b.WriteString(trimImportPath(s[start:j]))
			b.WriteByte(s[j])
			start = j + 1
		}
	}
	b.WriteString(trimImportPath(s[start:]))
	return b.String()
}

func trimImportPath(seg string) string {
	if k := strings.LastIndexByte(seg, '/'); k >= 0 {
		return seg[k+1:]
	}
	return seg
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	buf := [20]byte{}
	pos := len(buf)
	for n := i; n > 0; n /= 10 {
		pos--
		buf[pos] = byte('0' + n%10)
	}
	return string(buf[pos:])
}
