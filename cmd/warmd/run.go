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

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nabbar/warmd/example/echo"
	"github.com/nabbar/warmd/supervisor"
)

// newRunCommand is the production entrypoint: discover-or-spawn the
// daemon, then run argv through it exactly as a direct invocation of argv
// would have, just warm. This is what an embedder's own launcher binary
// would wrap around its own loader/runner pair instead of example/echo.
func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "run -- <argv...>",
		Short:              "discover or spawn the daemon, then execute argv through it",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// DisableFlagParsing hands us the raw argv untouched, which
			// still includes the "--" separator the usage string asks
			// for; the hosted application should see only what follows
			// it, not the separator itself.
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			cfg := supervisor.Config{
				AppName:  appName(),
				Loader:   echo.Loader,
				Runner:   echo.Runner,
				LogLevel: verboseLevel(),
			}

			code, err := supervisor.Run(cfg, cwd, args, os.Stdin, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			os.Exit(code)
			return nil
		},
	}
	return cmd
}
