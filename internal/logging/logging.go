/*
 * bgprouter - a simplified path-vector routing daemon
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

// Package logging wraps logrus behind the small injectable interface the
// router expects, keeping the rest of the tree free of a direct logrus
// import (and trivially testable with a no-op logger).
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = logrus.Fields

// Logger is the interface the router and its handlers log through.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
}

// logrusLogger adapts a *logrus.Logger to Logger.
type logrusLogger struct {
	l *logrus.Logger
}

// New builds a Logger writing to w at the given level ("debug", "info",
// "warn", "error"). An empty level defaults to "info".
func New(w io.Writer, level string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &logrusLogger{l: l}
}

// NewDefault builds a Logger writing to stderr at info level.
func NewDefault() Logger {
	return New(os.Stderr, "info")
}

func (g *logrusLogger) Debug(msg string, fields Fields) { g.l.WithFields(fields).Debug(msg) }
func (g *logrusLogger) Info(msg string, fields Fields)  { g.l.WithFields(fields).Info(msg) }
func (g *logrusLogger) Warn(msg string, fields Fields)  { g.l.WithFields(fields).Warn(msg) }
func (g *logrusLogger) Error(msg string, fields Fields) { g.l.WithFields(fields).Error(msg) }

// Nil is the no-op Logger, used in tests and anywhere a caller does not
// supply one.
type Nil struct{}

func (Nil) Debug(string, Fields) {}
func (Nil) Info(string, Fields)  {}
func (Nil) Warn(string, Fields)  {}
func (Nil) Error(string, Fields) {}
