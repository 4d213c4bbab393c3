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

// Package echo is an illustrative hosted application: a loader that
// simulates a one-time warmup cost, and a runner that writes its argv back
// to the client's stdout, exactly like the shell command `echo`. It is
// only ever a stand-in for a real embedder's application; no production
// semantics belong here.
package echo

import (
	"fmt"
	"strings"
	"time"

	"github.com/nabbar/warmd/server/handler"
)

// warmedAt records when Loader last ran, purely so Runner can prove the
// daemon's warm state survives across requests instead of being recreated
// per call.
var warmedAt time.Time

// Loader simulates the cold-start cost a real hosted application would
// pay once: importing libraries, parsing configuration, priming caches.
func Loader() error {
	time.Sleep(10 * time.Millisecond)
	warmedAt = time.Now()
	return nil
}

// Runner writes argv[1:] space-joined to the client's stdout, followed by
// " (warmed at <Loader time>)" and a newline, then returns 0 (or 1 if
// Stdout is nil or the write fails). Two verbs in argv[1] change that:
// "exit" returns argv[2] (if present and numeric, else 0) as the exit
// code, and "panic" panics; they exercise the E2/E3 scenarios from a shell.
func Runner(req *handler.Request) int {
	if len(req.Argv) >= 2 && req.Argv[1] == "exit" {
		code := 0
		if len(req.Argv) >= 3 {
			fmt.Sscanf(req.Argv[2], "%d", &code)
		}
		return code
	}
	if len(req.Argv) >= 2 && req.Argv[1] == "panic" {
		panic("echo: requested panic")
	}

	out := req.Stdout
	if out == nil {
		return 1
	}

	msg := strings.Join(req.Argv[1:], " ")
	if _, err := fmt.Fprintf(out, "%s (warmed at %s)\n", msg, warmedAt.Format(time.RFC3339Nano)); err != nil {
		return 1
	}
	return 0
}
