// Package logging holds the logger shared by every toolkit package.
//
// By default nothing is logged. Programs that want output install a logger
// with SetLogger, usually once from main:
//
//	logger := logrus.New()
//	logger.SetLevel(logrus.DebugLevel)
//	logging.SetLogger(logger)
package logging

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type holder struct {
	logger logrus.FieldLogger
}

var current atomic.Pointer[holder]

func init() {
	current.Store(&holder{logger: discard()})
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// SetLogger replaces the shared logger. Passing nil restores the silent default.
// Safe to call concurrently with logging from other goroutines.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discard()
	}
	current.Store(&holder{logger: l})
}

// Logger returns the shared logger.
func Logger() logrus.FieldLogger {
	return current.Load().logger
}

// New builds a text logger writing to w at the named level, the way the
// command line tools configure themselves.
func New(w io.Writer, level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(parsed)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l, nil
}
