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
	"time"

	"github.com/spf13/cobra"

	"dirpx.dev/boot"
	"dirpx.dev/boot/builder"
	"dirpx.dev/boot/starter/logger"
	"dirpx.dev/boot/starter/mongodb"
	"dirpx.dev/boot/starter/web"
)

var shutdownTimeout time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the blog service",
	Long: `Run the blog service until interrupted.

Examples:
  # Run with the default configuration directory
  bootdemo run

  # Run the dev profile
  bootdemo run --profile dev

  # Override a setting from the environment
  BOOT_WEB_PORT=9090 bootdemo run`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", builder.DefaultShutdownTimeout, "how long to wait for tasks after shutdown starts")
}

func runRun(cmd *cobra.Command, _ []string) error {
	b := boot.New(
		[]builder.Option{
			builder.WithConfigOptions(configOptions()...),
			builder.WithShutdownTimeout(shutdownTimeout),
		},
		logger.New(),
		mongodb.New(),
		web.New(),
	)
	msg, err := boot.RunWith(cmd.Context(), b)
	if err != nil {
		return err
	}
	cmd.Println(msg)
	return nil
}
