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
	"sync"

	"github.com/spf13/cobra"

	"github.com/nabbar/warmd/example/echo"
	"github.com/nabbar/warmd/server/handler"
	"github.com/nabbar/warmd/server/listener"
)

// newServerCommand runs a foreground example server: since its handler
// (example/echo) never mutates process-global state, dispatch by plain
// goroutine is permitted for the demo per spec.md §6 — a real embedder
// must use the supervisor package instead, which serializes that mutation.
func newServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server <socket_path>",
		Short: "run an example server in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(args[0])
		},
	}
}

func runServer(path string) error {
	ln, err := listener.Bind(path)
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := echo.Loader(); err != nil {
		return err
	}

	fmt.Println("listening on", path)

	var wg sync.WaitGroup
	for {
		h, err := ln.Accept()
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveOne(h)
		}()
	}
}

func serveOne(h *handler.Handler) {
	req, err := h.Receive()
	if err != nil {
		_ = h.CloseWithExitCode(130)
		return
	}
	code := echo.Runner(req)
	_ = h.CloseWithExitCode(code)
}
