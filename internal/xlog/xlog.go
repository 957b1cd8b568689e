// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package xlog provides a single shared leveled logger, with fields for
// stream line numbers and component names, on top of logrus rather than
// hand-rolled leader-line formatting.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger every component shares.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetVerbosity maps the repeatable -v flag onto a logrus level: each
// added -v unlocks a more detailed tier of tracing, from baton progress
// up through op tracing, command echo, and file-shuffle detail.
func SetVerbosity(count int) {
	switch {
	case count <= 0:
		Log.SetLevel(logrus.WarnLevel)
	case count == 1:
		Log.SetLevel(logrus.InfoLevel)
	default:
		Log.SetLevel(logrus.DebugLevel)
	}
}

// AtLine is a convenience for diagnostics that should carry a stream
// line number, so a parse or replay failure can point back at "line N:"
// in the input.
func AtLine(line int) *logrus.Entry {
	if line > 0 {
		return Log.WithField("line", line)
	}
	return logrus.NewEntry(Log)
}

// Component scopes a logger to a named subsystem (parser, graph,
// assign, replay) by attaching a "component" field to every entry it
// emits.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
