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

// Package commands implements the bootdemo command line.
package commands

import (
	"github.com/spf13/cobra"

	"dirpx.dev/boot/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile   string
	cfgDir    string
	profile   string
	envPrefix string
)

var rootCmd = &cobra.Command{
	Use:   "bootdemo",
	Short: "bootdemo - a blog service built on boot",
	Long: `bootdemo runs a small blog API backed by MongoDB.

Configuration is read from config/app.yaml, the active profile file
and BOOT_* environment variables, in that order of precedence.

Use "bootdemo [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search the config directory)")
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", config.DefaultDir, "directory searched for configuration files")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "configuration profile to activate")
	rootCmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", config.DefaultEnvPrefix, "environment variable prefix, empty to disable")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(configCmd)
}

// configOptions turns the global flags into config.Load options.
func configOptions() []config.Option {
	opts := []config.Option{
		config.WithDir(cfgDir),
		config.WithEnvPrefix(envPrefix),
	}
	if cfgFile != "" {
		opts = append(opts, config.WithFile(cfgFile))
	}
	if profile != "" {
		opts = append(opts, config.WithProfile(profile))
	}
	return opts
}
