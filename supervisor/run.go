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

package supervisor

import (
	"os"

	"github.com/nabbar/warmd/client"
	liberr "github.com/nabbar/warmd/errors"
)

// maxSpawnAttempts bounds the retry-after-spawn loop: two launchers racing
// to start the daemon (E6 readiness ordering) each get one spawn attempt
// plus a fast-path retry; a third failure means something is genuinely
// wrong rather than merely racing, so Run gives up instead of looping
// forever.
const maxSpawnAttempts = 3

// Run is the production launcher entry point (`warmd run -- argv...`): try
// the fast path of connecting to an already-running daemon; if none is
// listening, spawn one and retry. It returns the exit code to propagate
// via os.Exit and an error only when neither path could ever succeed.
func Run(cfg Config, cwd string, argv []string, stdin, stdout, stderr *os.File) (int, error) {
	dir, err := cfg.baseDir()
	if err != nil {
		return 0, err
	}
	sockPath := cfg.socketPath(dir)

	var lastErr error
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		c, err := client.Dial(sockPath)
		if err == nil {
			return c.Execute(cwd, argv, stdin, stdout, stderr)
		}
		if !liberr.Is(err, liberr.ConnectError) {
			return 0, err
		}
		lastErr = err

		if spawnErr := spawnAndAwaitReady(cfg, dir); spawnErr != nil {
			// Another launcher may have won the race and already be
			// serving: loop back to the fast path rather than failing
			// immediately on a spawn error that just means "lost the
			// race", per spec.md's E6 scenario.
			lastErr = spawnErr
			continue
		}
	}

	return 0, liberr.ConnectError.Error(lastErr, "could not reach or start daemon for %s", cfg.AppName)
}
