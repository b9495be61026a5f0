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

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dirpx.dev/boot/route"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered HTTP routes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Registering into a scratch router reports duplicates the way the server would.
		r := route.NewRouter()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "METHOD\tPATH\tHANDLER")
		for _, h := range route.Handlers.Entries() {
			if err := h.Register(r); err != nil {
				return err
			}
			for _, b := range h.Bindings() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", b.Verb, b.Path, h.Name())
			}
		}
		return w.Flush()
	},
}
