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

// Package level is a small logging-severity enum that converts to and from
// logrus.Level, kept close to the teacher's logger/level package but
// trimmed to the levels this daemon actually logs at.
package level

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a logging severity, ordered from most to least severe.
type Level uint8

const (
	// ErrorLevel: the current request or operation failed.
	ErrorLevel Level = iota
	// WarnLevel: something is off but the daemon keeps running.
	WarnLevel
	// InfoLevel: daemon lifecycle and request-level milestones.
	InfoLevel
	// DebugLevel: per-frame / per-state-transition diagnostics.
	DebugLevel
)

func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warning"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return "info"
	}
}

// Logrus converts l to the equivalent logrus.Level.
func (l Level) Logrus() logrus.Level {
	switch l {
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Parse is case-insensitive and returns InfoLevel for anything unrecognized,
// matching the teacher's Parse behavior.
func Parse(s string) Level {
	switch {
	case strings.EqualFold(s, "error"):
		return ErrorLevel
	case strings.EqualFold(s, "warning"), strings.EqualFold(s, "warn"):
		return WarnLevel
	case strings.EqualFold(s, "debug"):
		return DebugLevel
	default:
		return InfoLevel
	}
}
