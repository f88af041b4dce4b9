// Package logging configures the process logger and rate-limits hot-path
// diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Field keys shared by all components.
const (
	FieldComponent = "component"
	FieldSession   = "session"
	FieldState     = "state"
)

// Setup returns a logger writing to stderr at level with a "text" or
// "json" formatter. An unknown level falls back to info and is reported
// as an error together with the usable logger.
func Setup(level, format string) (*logrus.Logger, error) {
	return SetupWriter(os.Stderr, level, format)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		return log, fmt.Errorf("logging: %w", err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// Component returns log tagged with a component name.
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	if log == nil {
		log = Discard()
	}
	return log.WithField(FieldComponent, name)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
