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
	"sync"

	"github.com/nabbar/warmd/internal/wire"
	loglvl "github.com/nabbar/warmd/logger/level"
	"github.com/nabbar/warmd/server/listener"

	"github.com/nabbar/warmd/logger"
)

// ServeDaemon is the daemonized child's entire lifetime: invoke the loader
// once, bind the listener, signal readiness on the inherited pipe, then
// accept connections forever. It returns only on a startup failure
// (resolving the app directory, opening the log, the loader, binding, or
// signaling readiness); cmd/warmd's main calls this directly (guarded by IsDaemonChild) and
// exits the process on return instead of falling through to CLI dispatch.
func ServeDaemon(cfg Config) error {
	dir, err := cfg.baseDir()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.logPath(dir), loglvl.Parse(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("daemon starting", logger.Fields{"app": cfg.AppName, "pid": os.Getpid()})

	if cfg.Loader != nil {
		if err := cfg.Loader(); err != nil {
			log.Error("loader failed, daemon exiting without retry: %s", nil, err.Error())
			return err
		}
	}

	ln, err := listener.Bind(cfg.socketPath(dir))
	if err != nil {
		log.Error("binding control socket failed: %s", nil, err.Error())
		return err
	}
	defer ln.Close()

	if stopWatch, err := ln.Watch(log); err != nil {
		log.Warning("starting socket watch failed: %s", nil, err.Error())
	} else {
		defer stopWatch()
	}

	if err := signalReady(); err != nil {
		log.Error("signaling readiness failed: %s", nil, err.Error())
		return err
	}

	log.Info("daemon ready, accepting connections", logger.Fields{"socket": ln.Path()})

	d := &dispatcher{cfg: cfg, log: log}
	for {
		h, err := ln.Accept()
		if err != nil {
			log.Warning("accept failed: %s", nil, err.Error())
			continue
		}
		go d.handle(h)
	}
}

// signalReady writes one sentinel frame on the inherited readiness pipe
// write end (fd 3, see readinessFD) so the launcher blocked in
// spawnAndAwaitReady can proceed. The descriptor is owned by this
// function; it is closed after the write either way since nothing further
// ever uses it.
func signalReady() error {
	f := os.NewFile(uintptr(readinessFD), "readiness")
	if f == nil {
		return nil
	}
	defer f.Close()

	ch := wire.New(f)
	return ch.Send([]byte("ready"))
}

// dispatcher serializes the process-global mutations (cwd, stdio, argv
// echo) that each worker must perform around calling Runner, in place of
// spec.md's per-request fork: the mutex scopes exactly the critical
// section spec.md's isolation rationale calls out, while keeping every
// request inside the one process that holds the loader's warm state.
type dispatcher struct {
	cfg Config
	log logger.Logger
	mu  sync.Mutex
}
