/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

//go:build unix

// Command warmd is the example launcher CLI: it wires spf13/cobra commands
// onto the client/server/supervisor packages, in the shape of the
// teacher's cobra wrapper but trimmed to a plain *cobra.Command tree
// (the teacher's bubbletea-driven interactive prompt UI has no role in a
// non-interactive daemon launcher, see DESIGN.md).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagConfig  string
	flagVerbose int
	flagNoColor bool
	flagAppName string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "warmd",
		Short:         "preloading command-execution daemon",
		Long:          "warmd pays an application's cold-start cost once, then serves subsequent invocations over a local socket.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config file (viper: yaml, json, toml)")
	root.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (-v, -vv)")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized CLI output")
	root.PersistentFlags().StringVar(&flagAppName, "app-name", "warmd-echo", "per-user directory name under $HOME holding control.sock and log")

	_ = viper.BindPFlag("app_name", root.PersistentFlags().Lookup("app-name"))

	cobra.OnInitialize(initConfig)

	root.AddCommand(newServerCommand())
	root.AddCommand(newClientCommand())
	root.AddCommand(newRunCommand())

	return root
}

func initConfig() {
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
		_ = viper.ReadInConfig()
	}
	viper.SetEnvPrefix("WARMD")
	viper.AutomaticEnv()

	if flagNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// appName resolves the effective app name by viper's usual precedence:
// an explicitly passed --app-name flag, else the WARMD_APP_NAME
// environment variable, else the config file's app_name key, else the
// flag's default.
func appName() string {
	return viper.GetString("app_name")
}

// verboseLevel resolves the effective lifecycle log level: a "log_level"
// key in the config file takes precedence over the -v/-vv count, so an
// operator can pin verbosity without touching the launch command.
func verboseLevel() string {
	if lvl := viper.GetString("log_level"); lvl != "" {
		return lvl
	}
	switch {
	case flagVerbose >= 2:
		return "debug"
	case flagVerbose == 1:
		return "info"
	default:
		return "warning"
	}
}

func fatal(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error: %s", err.Error()))
	os.Exit(1)
}

func main() {
	// A re-exec'd daemon child never reaches cobra: it is intercepted here,
	// before any flag parsing, exactly as spawnAndAwaitReady expects.
	if maybeServeDaemon() {
		return
	}

	if err := newRootCommand().Execute(); err != nil {
		fatal(err)
	}
}
