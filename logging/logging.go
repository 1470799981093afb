package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns the application logger. level accepts trace, debug, info, warn, error.
func New(name string, level string, json bool) hclog.Logger {
	return NewWithOutput(name, level, json, os.Stderr)
}

func NewWithOutput(name string, level string, json bool, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		Output:     out,
		JSONFormat: json,
	})
}

// Discard is used by tests and by components constructed without a logger.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
