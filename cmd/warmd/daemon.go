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
	"fmt"
	"os"

	"github.com/nabbar/warmd/example/echo"
	"github.com/nabbar/warmd/supervisor"
)

// maybeServeDaemon checks whether this process is the re-exec'd daemon
// child (supervisor.IsDaemonChild) and, if so, runs ServeDaemon to
// completion and reports whether the caller should return immediately
// without touching cobra at all.
func maybeServeDaemon() bool {
	if !supervisor.IsDaemonChild() {
		return false
	}

	cfg := supervisor.Config{
		AppName:  supervisor.DaemonAppName(),
		Loader:   echo.Loader,
		Runner:   echo.Runner,
		LogLevel: supervisor.DaemonLogLevel(),
	}
	if cfg.AppName == "" {
		cfg.AppName = "warmd-echo"
	}

	if err := supervisor.ServeDaemon(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "daemon exited:", err)
		os.Exit(1)
	}
	return true
}
