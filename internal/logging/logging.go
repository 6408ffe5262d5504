// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus logger shared by every component.
package logging

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// SlowThreshold is the duration above which Track logs at warn level.
var SlowThreshold = 2 * time.Second

// New returns a text logger writing to w at the named level. An unknown
// level falls back to warn.
func New(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	log.SetLevel(lvl)
	return log
}

// Component returns a logger tagged with the component name.
func Component(log logrus.FieldLogger, name string) logrus.FieldLogger {
	return log.WithField("component", name)
}

// Discard returns a logger that drops everything. Tests and callers that
// do not care about logs use it as the default.
func Discard() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Track logs msg with its duration when the returned func is called.
func Track(log logrus.FieldLogger, msg string) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		entry := log.WithField("duration", dur.String())
		if dur > SlowThreshold {
			entry.Warnf("%s completed (slow)", msg)
			return
		}
		entry.Debugf("%s completed", msg)
	}
}
