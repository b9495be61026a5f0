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

// ConfigRegistry gives typed access to the immutable configuration tree.
type ConfigRegistry interface {
	// Has reports whether a subtree exists at the dotted prefix.
	// The empty prefix addresses the whole tree.
	Has(prefix string) bool
	// Unmarshal decodes the subtree rooted at prefix into target,
	// which must be a non-nil pointer.
	Unmarshal(prefix string, target any) error
}

// Configurable is implemented by configuration shapes that know their own prefix.
type Configurable interface {
	ConfigPrefix() string
}
