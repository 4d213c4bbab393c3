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
	"os/exec"
	"syscall"

	"github.com/nabbar/warmd/internal/wire"

	liberr "github.com/nabbar/warmd/errors"
)

// daemonEnvVar, when set in the child's environment, tells a re-exec of
// this same binary that it is the daemonized child rather than a fresh
// launcher invocation: see IsDaemonChild and ServeDaemon. Its value is the
// application name, letting the child reconstruct Config.baseDir without
// any other IPC from the parent.
const daemonEnvVar = "WARMD_DAEMONIZE_APP"

// daemonLogLevelEnvVar carries the launcher's resolved log level (from
// --verbose or a config file's log_level key) across the re-exec, so the
// daemonized child's lifecycle log honors it instead of always falling
// back to ServeDaemon's default.
const daemonLogLevelEnvVar = "WARMD_DAEMONIZE_LOG_LEVEL"

// readinessFD is the file descriptor number the readiness pipe's write
// end lands on inside the daemonized child: fd 0-2 are stdio (redirected
// to the log/devnull by spawn), so the first entry of cmd.ExtraFiles is
// fd 3.
const readinessFD = 3

// IsDaemonChild reports whether the current process is a re-exec spawned
// by spawnAndAwaitReady to become the daemon, rather than a plain launcher
// invocation. Callers (cmd/warmd's main) must check this before any flag
// parsing and, if true, call ServeDaemon with the same Config and exit on
// its return instead of proceeding with normal CLI dispatch.
func IsDaemonChild() bool {
	return os.Getenv(daemonEnvVar) != ""
}

// DaemonAppName returns the app name a re-exec'd child inherited from its
// launcher's daemonEnvVar, for reconstructing Config before calling
// ServeDaemon.
func DaemonAppName() string {
	return os.Getenv(daemonEnvVar)
}

// DaemonLogLevel returns the log level a re-exec'd child inherited from
// its launcher's daemonLogLevelEnvVar.
func DaemonLogLevel() string {
	return os.Getenv(daemonLogLevelEnvVar)
}

// spawnAndAwaitReady re-execs the running binary with daemonEnvVar set,
// detached into its own session so it outlives this launcher, and blocks
// until the child signals readiness on an inherited pipe. This replaces
// spec.md's fork+setsid+fork+chdir+stdio-redirect sequence: Go cannot
// continue running after a raw fork once more than one OS thread exists,
// which is true of essentially every Go binary by the time main() starts,
// so the equivalent safe primitive is a fresh exec of the same binary
// under a new session, with its own stdio already pointed at the log file
// and its readiness pipe write end passed via ExtraFiles instead of being
// inherited across a fork.
func spawnAndAwaitReady(cfg Config, dir string) error {
	logPath := cfg.logPath(dir)
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return liberr.IOError.Error(err, "opening log file %s", logPath)
	}
	defer logFile.Close()

	devnull, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err != nil {
		return liberr.IOError.Error(err, "opening %s", os.DevNull)
	}
	defer devnull.Close()

	rPipe, wPipe, err := os.Pipe()
	if err != nil {
		return liberr.IOError.Error(err, "creating readiness pipe")
	}
	defer rPipe.Close()

	self, err := os.Executable()
	if err != nil {
		return liberr.IOError.Error(err, "resolving own executable path")
	}

	cmd := exec.Command(self, os.Args[1:]...)
	cmd.Env = append(os.Environ(),
		daemonEnvVar+"="+cfg.AppName,
		daemonLogLevelEnvVar+"="+cfg.LogLevel,
	)
	cmd.Dir = "/"
	cmd.Stdin = devnull
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.ExtraFiles = []*os.File{wPipe}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return liberr.IOError.Error(err, "spawning daemon process")
	}
	// The child now holds its own dup of wPipe; this process's copy must
	// be closed so that rPipe.Read unblocks via EOF if the child dies
	// before writing readiness, instead of hanging forever.
	_ = wPipe.Close()
	// The daemon is meant to outlive this launcher; nothing further is
	// done with the child's lifecycle from here.
	_ = cmd.Process.Release()

	ch := wire.New(rPipe)
	_, ok, err := ch.Receive()
	if err != nil {
		return liberr.ConnectError.Error(err, "waiting for daemon readiness")
	}
	if !ok {
		return liberr.ConnectError.Error(nil, "daemon exited before signaling readiness")
	}
	return nil
}
