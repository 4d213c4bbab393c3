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

package listener

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/nabbar/warmd/logger"
)

// Watch is a diagnostic, not part of the core handshake: it watches the
// socket file's parent directory and logs a warning if the socket file
// disappears out from under a running listener (removed by an operator,
// or by another process reclaiming a path it believed was stale). It
// returns a stop function; calling it tears down the watch goroutine.
//
// This has no bearing on correctness of Bind's own stale-file probe — it
// exists purely so an operator's `log` file records when and why a
// control socket vanished while this process still believed it owned it.
func (l *Listener) Watch(log logger.Logger) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(l.path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == l.path && (ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0) {
					log.Warning("control socket file vanished unexpectedly", logger.Fields{"path": l.path})
				}
			case e, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Debug("socket watch error: %s", nil, e.Error())
			}
		}
	}()

	return func() {
		_ = w.Close()
		<-done
	}, nil
}
