// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"nupop-core/errs"
)

// Defaults used when neither flags nor config name a level or format.
const (
	DefaultLevel  = "warn"
	DefaultFormat = "text"
)

// New returns a logger writing to w. level is a logrus level name
// (panic, fatal, error, warn, info, debug, trace); format is text or json.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	const op = "logging.New"
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, op, err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errs.Wrap(errs.Configuration, op, fmt.Errorf("unknown log format %q (want text|json)", format))
	}
	return log, nil
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
